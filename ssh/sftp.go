// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/sftp"

	"github.com/ngrsoftlab/tierup"
)

// interface guard: ensure SFTPHost satisfies tierup.RemoteHost
var _ tierup.RemoteHost = (*SFTPHost)(nil)

// SFTPHost implements tierup.RemoteHost over the sftp subsystem. It opens
// one sftp session lazily on first use and reuses it for all operations.
// Prefer this over Host when the server enables sftp: append writes avoid a
// shell round trip per chunk.
type SFTPHost struct {
	client *Client

	mu      sync.Mutex
	sftpCli *sftp.Client
	sess    *Session
}

// NewSFTPHost returns an SFTPHost executing through client.
func NewSFTPHost(client *Client) *SFTPHost {
	return &SFTPHost{client: client}
}

// conn returns the shared sftp client, opening the subsystem session on
// first call.
func (h *SFTPHost) conn(ctx context.Context) (*sftp.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sftpCli != nil {
		return h.sftpCli, nil
	}

	sess, err := h.client.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open ssh session for sftp: %w", err)
	}

	stdoutPipe, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("get sftp stdout pipe: %w", err)
	}
	stdinPipe, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("get sftp stdin pipe: %w", err)
	}

	if err := sess.RequestSubsystem("sftp"); err != nil {
		sess.Close()
		return nil, fmt.Errorf("request sftp subsystem: %w", err)
	}

	cli, err := sftp.NewClientPipe(stdoutPipe, stdinPipe)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("sftp new client pipe: %w", err)
	}

	h.sftpCli, h.sess = cli, sess
	return cli, nil
}

// Close shuts down the sftp session if one was opened.
func (h *SFTPHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sftpCli == nil {
		return nil
	}
	err := h.sftpCli.Close()
	h.sess.Close()
	h.sftpCli, h.sess = nil, nil
	return err
}

// Remove deletes path. A missing path is not an error.
func (h *SFTPHost) Remove(ctx context.Context, path string) error {
	cli, err := h.conn(ctx)
	if err != nil {
		return err
	}
	if err := cli.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sftp remove: %w", err)
	}
	return nil
}

// MkdirAll creates dir and any missing parents, then applies mode to dir.
func (h *SFTPHost) MkdirAll(ctx context.Context, dir string, mode os.FileMode) error {
	cli, err := h.conn(ctx)
	if err != nil {
		return err
	}
	if err := cli.MkdirAll(dir); err != nil {
		return fmt.Errorf("sftp create target dir: %w", err)
	}
	if err := cli.Chmod(dir, mode); err != nil {
		return fmt.Errorf("sftp chmod dir: %w", err)
	}
	return nil
}

// AppendChunk opens path in append mode, writes data, and closes the file.
func (h *SFTPHost) AppendChunk(ctx context.Context, path string, data []byte) error {
	cli, err := h.conn(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := cli.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
	if err != nil {
		return fmt.Errorf("sftp open file: %w", err)
	}
	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			f.Close()
			return fmt.Errorf("sftp write chunk: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sftp close file: %w", err)
	}
	return nil
}

// Stat returns metadata for path.
func (h *SFTPHost) Stat(ctx context.Context, path string) (*tierup.RemoteFileInfo, error) {
	cli, err := h.conn(ctx)
	if err != nil {
		return nil, err
	}
	info, err := cli.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("sftp stat: %w", err)
	}
	return &tierup.RemoteFileInfo{Path: path, Size: info.Size()}, nil
}
