// Copyright © NGRSoftlab 2020-2025

package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ngrsoftlab/tierup"
)

// interface guard. ensure Host implements tierup.RemoteHost
var _ tierup.RemoteHost = (*Host)(nil)

// Host implements tierup.RemoteHost against the local filesystem. Used in
// tests and for dry-run rehearsal of deployment payloads.
type Host struct {
	root string // optional base dir; relative paths resolve against it
}

// NewHost returns a Host. If root is non-empty, relative paths are resolved
// against it.
func NewHost(root string) *Host {
	return &Host{root: root}
}

func (h *Host) resolve(path string) string {
	if h.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.root, path)
}

// Remove deletes path. A missing path is not an error.
func (h *Host) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(h.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// MkdirAll creates dir and any missing parents
func (h *Host) MkdirAll(ctx context.Context, dir string, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(h.resolve(dir), mode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// AppendChunk opens path in append mode, writes data, and closes the file
func (h *Host) AppendChunk(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(h.resolve(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open target file: %w", err)
	}
	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			f.Close()
			return fmt.Errorf("write chunk: %w", err)
		}
	}
	return f.Close()
}

// Stat returns metadata for path
func (h *Host) Stat(ctx context.Context, path string) (*tierup.RemoteFileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := h.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	return &tierup.RemoteFileInfo{Path: full, Size: info.Size()}, nil
}
