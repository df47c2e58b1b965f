// Copyright © NGRSoftlab 2020-2025

package tierup

import (
	"fmt"
	"os"
)

// TransferRequest describes one file push to a target host. It is immutable
// for the duration of a transfer.
type TransferRequest struct {
	SourcePath string // local file; must exist and be a regular file
	DestPath   string // target path; may be relative to the remote workdir
}

// Validate checks request fields and the source file, returning the source
// size on success. Any problem with the local file wraps ErrSource.
func (r *TransferRequest) Validate() (int64, error) {
	if r == nil {
		return 0, fmt.Errorf("%w: transfer request empty", ErrSource)
	}
	if r.SourcePath == "" {
		return 0, fmt.Errorf("%w: source path required", ErrSource)
	}
	if r.DestPath == "" {
		return 0, fmt.Errorf("%w: destination path required", ErrSource)
	}

	info, err := os.Stat(r.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("%w: stat %q: %v", ErrSource, r.SourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %q is not a regular file", ErrSource, r.SourcePath)
	}
	return info.Size(), nil
}
