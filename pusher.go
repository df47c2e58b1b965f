// Copyright © NGRSoftlab 2020-2025

package tierup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/juju/loggo/v2"
)

const (
	// DefaultBlockSize is the chunk size used when none is configured.
	DefaultBlockSize = 1 << 20 // 1 MiB

	defaultRemoteDirMode = os.FileMode(0o755)
)

// PushOption configures a Pusher.
type PushOption func(*Pusher)

// WithBlockSize sets the chunk size in bytes (default 1 MiB). Larger blocks
// mean fewer remote round trips; smaller blocks suit slow or lossy channels.
func WithBlockSize(n int) PushOption {
	return func(p *Pusher) {
		if n > 0 {
			p.blockSize = n
		}
	}
}

// WithProgress sets the sink receiving a report after every chunk.
func WithProgress(fn ProgressFunc) PushOption {
	return func(p *Pusher) {
		p.progress = fn
	}
}

// WithPushLogger overrides the pusher's logger.
func WithPushLogger(logger loggo.Logger) PushOption {
	return func(p *Pusher) {
		p.logger = logger
	}
}

// Pusher transfers local files to a RemoteHost in fixed-size chunks over a
// command channel. Each chunk is a single independent remote append, applied
// strictly in order; the pusher never holds more than one chunk in memory.
//
// A Pusher is safe for sequential reuse. Concurrent pushes to the same
// destination path are not supported: the remote write is append-based, so
// callers must serialize transfers targeting one file.
type Pusher struct {
	host      RemoteHost
	blockSize int
	progress  ProgressFunc
	logger    loggo.Logger
}

// NewPusher returns a Pusher writing through host.
func NewPusher(host RemoteHost, opts ...PushOption) *Pusher {
	p := &Pusher{
		host:      host,
		blockSize: DefaultBlockSize,
		logger:    loggo.GetLogger("tierup.pusher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Push transfers the source file to req.DestPath and returns the remote
// file's metadata. Any pre-existing destination is deleted first, so a rerun
// after a failed attempt produces a clean copy rather than concatenated
// content. On failure the partial destination is left in place; restart the
// whole transfer to recover.
func (p *Pusher) Push(ctx context.Context, req *TransferRequest) (*RemoteFileInfo, error) {
	total, err := req.Validate()
	if err != nil {
		return nil, err
	}

	src, err := os.Open(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrSource, req.SourcePath, err)
	}
	defer src.Close()

	activity := fmt.Sprintf("push %q", filepath.Base(req.SourcePath))

	if err := p.prepare(ctx, req.DestPath); err != nil {
		return nil, err
	}

	buf := make([]byte, p.blockSize)
	var sent int64
	chunks := 0

	for sent < total {
		if err := interrupted(ctx, nil); err != nil {
			return nil, fmt.Errorf("%w at offset %d: %v", ErrChannel, sent, context.Cause(ctx))
		}

		n := p.blockSize
		if remaining := total - sent; remaining < int64(n) {
			n = int(remaining)
		}
		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return nil, fmt.Errorf("%w: read %q at offset %d: %v", ErrSource, req.SourcePath, sent, err)
		}

		if err := p.host.AppendChunk(ctx, req.DestPath, buf[:n]); err != nil {
			if cerr := interrupted(ctx, err); cerr != nil {
				return nil, fmt.Errorf("%w at offset %d: %v", ErrChannel, sent, err)
			}
			return nil, fmt.Errorf("%w: chunk at offset %d (%d bytes): %v", ErrWrite, sent, n, err)
		}

		sent += int64(n)
		chunks++
		p.report(activity, sent, total)
		p.logger.Tracef("%s: chunk %d done, %s of %s", activity, chunks,
			humanize.IBytes(uint64(sent)), humanize.IBytes(uint64(total)))
	}

	// Zero-length sources send no chunks but still complete.
	p.report(activity, sent, total)

	info, err := p.host.Stat(ctx, req.DestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %v", ErrVerify, req.DestPath, err)
	}
	if info.Size != total {
		return nil, fmt.Errorf("%w: %q has %d bytes, want %d", ErrVerify, info.Path, info.Size, total)
	}

	p.logger.Debugf("pushed %q -> %q: %s in %d chunks",
		req.SourcePath, info.Path, humanize.IBytes(uint64(total)), chunks)
	return info, nil
}

// prepare clears any stale destination, ensures the parent directory, and
// creates an empty destination file so that even zero-length sources leave a
// file behind.
func (p *Pusher) prepare(ctx context.Context, dest string) error {
	if err := p.host.Remove(ctx, dest); err != nil {
		return fmt.Errorf("%w: remove stale %q: %v", ErrPrep, dest, err)
	}
	if dir := path.Dir(dest); dir != "." && dir != "/" {
		if err := p.host.MkdirAll(ctx, dir, defaultRemoteDirMode); err != nil {
			return fmt.Errorf("%w: create directory %q: %v", ErrPrep, dir, err)
		}
	}
	if err := p.host.AppendChunk(ctx, dest, nil); err != nil {
		return fmt.Errorf("%w: create destination %q: %v", ErrPrep, dest, err)
	}
	return nil
}

// report sends one progress update. Percent is 100 for empty sources.
func (p *Pusher) report(activity string, sent, total int64) {
	if p.progress == nil {
		return
	}
	percent := 100.0
	if total > 0 {
		percent = float64(sent) / float64(total) * 100
	}
	p.progress(Progress{
		Activity: activity,
		Status:   fmt.Sprintf("%s / %s", humanize.IBytes(uint64(sent)), humanize.IBytes(uint64(total))),
		Percent:  percent,
	})
}

// interrupted reports whether the push should be treated as a channel drop:
// the context ended, the remote operation was canceled, or the transport
// itself went away mid-operation.
func interrupted(ctx context.Context, opErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opErr == nil {
		return nil
	}
	if errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded) ||
		errors.Is(opErr, io.EOF) || errors.Is(opErr, net.ErrClosed) {
		return opErr
	}
	return nil
}
