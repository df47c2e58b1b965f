// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/ngrsoftlab/tierup"
	"github.com/ngrsoftlab/tierup/command"
	"github.com/ngrsoftlab/tierup/parser"
)

// interface guard: ensure Host satisfies tierup.RemoteHost
var _ tierup.RemoteHost = (*Host)(nil)

// Host implements tierup.RemoteHost with plain shell commands, so it works
// against any host with a POSIX shell. No scp binary or sftp subsystem is
// required on the remote side; chunk data travels as command stdin.
//
// Every command runs without a PTY: the data paths here are non-interactive,
// and chunk bytes on stdin must not pass through a tty line discipline.
type Host struct {
	client tierup.Client[RunOption]
}

// NewHost returns a Host executing through client.
func NewHost(client tierup.Client[RunOption]) *Host {
	return &Host{client: client}
}

// Remove deletes path on the remote host. A missing path is not an error.
func (h *Host) Remove(ctx context.Context, path string) error {
	return tierup.RunNoResult(ctx, h.client, removeCmd(path), WithoutPTY())
}

// MkdirAll creates dir and any missing parents with the given mode.
func (h *Host) MkdirAll(ctx context.Context, dir string, mode os.FileMode) error {
	return tierup.RunNoResult(ctx, h.client, mkdirCmd(dir, mode), WithoutPTY())
}

// AppendChunk streams data as stdin to `cat >> path`. The remote shell
// opens the file in append mode, writes, and closes it; one chunk is one
// remote invocation with no captured state between calls.
func (h *Host) AppendChunk(ctx context.Context, path string, data []byte) error {
	return tierup.RunNoResult(ctx, h.client, appendCmd(path),
		WithStdin(bytes.NewReader(data)), WithoutPTY())
}

// Stat returns the remote file's size and its path as resolved on the remote
// side, so relative destinations come back absolute.
func (h *Host) Stat(ctx context.Context, path string) (*tierup.RemoteFileInfo, error) {
	size, err := tierup.RunParse[RunOption, int64](ctx, h.client, statCmd(path), WithoutPTY())
	if err != nil {
		return nil, err
	}
	resolved, _, _, err := tierup.RunRaw(ctx, h.client, resolveCmd(path), WithoutPTY())
	if err != nil {
		return nil, err
	}
	if resolved = strings.TrimSpace(resolved); resolved == "" {
		resolved = path
	}
	return &tierup.RemoteFileInfo{Path: resolved, Size: size}, nil
}

// Exists reports whether path exists on the remote host.
func (h *Host) Exists(ctx context.Context, path string) (bool, error) {
	return tierup.RunParse[RunOption, bool](ctx, h.client, existsCmd(path), WithoutPTY())
}

func removeCmd(path string) *command.Command {
	return command.New("rm -f -- %s", command.WithQuotedArgs(path))
}

func mkdirCmd(dir string, mode os.FileMode) *command.Command {
	return command.New("mkdir -p -m %04o -- %s",
		command.WithArgs(mode.Perm()),
		command.WithQuotedArgs(dir),
	)
}

func appendCmd(path string) *command.Command {
	return command.New("cat >> %s", command.WithQuotedArgs(path))
}

func statCmd(path string) *command.Command {
	return command.New("stat -c %%s -- %s",
		command.WithQuotedArgs(path),
		command.WithParser(&parser.SizeParser{}),
	)
}

func resolveCmd(path string) *command.Command {
	return command.New("readlink -f -- %s", command.WithQuotedArgs(path))
}

func existsCmd(path string) *command.Command {
	return command.New("[ -e %s ] && echo true || echo false",
		command.WithQuotedArgs(path),
		command.WithParser(&parser.BoolParser{}),
	)
}
