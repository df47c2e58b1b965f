// Copyright © NGRSoftlab 2020-2025

package tierup

import (
	"context"
	"os"
)

// RemoteFileInfo describes a file on the target host after a transfer.
type RemoteFileInfo struct {
	Path string // path as resolved on the target
	Size int64  // size in bytes
}

// RemoteHost is the filesystem surface the pusher needs on a target host.
// Implementations exist over plain shell commands (ssh.Host), the sftp
// subsystem (ssh.SFTPHost), and the local filesystem (local.Host).
type RemoteHost interface {
	// Remove deletes path. A missing path is not an error.
	Remove(ctx context.Context, path string) error

	// MkdirAll creates dir and any missing parents with the given mode.
	MkdirAll(ctx context.Context, dir string, mode os.FileMode) error

	// AppendChunk opens path (creating it if needed), seeks to end of file,
	// writes data, and closes the file. Each call is one independent remote
	// operation; chunks must be applied in offset order.
	AppendChunk(ctx context.Context, path string, data []byte) error

	// Stat returns metadata for path, or an error if it does not exist.
	Stat(ctx context.Context, path string) (*RemoteFileInfo, error)
}
