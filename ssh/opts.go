// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"bytes"
	"io"
	"sync"
)

// RunOption configures a single SSH command execution
type RunOption func(*runConfig)

// bufPoolOut is a pool of buffers used to capture stdout
var bufPoolOut = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// bufPoolErr is a pool of buffers used to capture stderr
var bufPoolErr = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// runConfig holds settings and buffers for one SSH command run
type runConfig struct {
	workdir       string            // remote working directory for this run
	env           map[string]string // environment variables for this run
	stdin         io.Reader         // input for the command
	stdout        io.Writer         // live stdout writer (wrapped to buffer by default)
	stderr        io.Writer         // live stderr writer (wrapped to buffer by default)
	bufOut        *bytes.Buffer     // internal buffer for stdout
	bufErr        *bytes.Buffer     // internal buffer for stderr
	usePTY        bool              // allocate a PTY for the session
	disablePTY    bool              // veto PTY allocation regardless of heuristics
	disableBuffer bool              // disable internal buffering of output
}

// newRunConfig creates a runConfig from base workdir/envVars and applies opts.
// It initializes internal buffers and, unless buffering is disabled,
// wraps stdout/stderr writers to also record output in bufOut/bufErr
func newRunConfig(workdir string, envVars map[string]string, opts ...RunOption) *runConfig {
	bufOut := bufPoolOut.Get().(*bytes.Buffer)
	bufErr := bufPoolErr.Get().(*bytes.Buffer)
	bufOut.Reset()
	bufErr.Reset()

	cfg := &runConfig{
		workdir: workdir,
		env:     make(map[string]string, len(envVars)),
		stdout:  bufOut, // default buffers
		stderr:  bufErr,
		bufOut:  bufOut,
		bufErr:  bufErr,
	}

	for k, v := range envVars {
		cfg.env[k] = v
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.disableBuffer {
		if cfg.stdout != bufOut {
			cfg.stdout = io.MultiWriter(cfg.stdout, bufOut)
		}
		if cfg.stderr != bufErr {
			cfg.stderr = io.MultiWriter(cfg.stderr, bufErr)
		}
	}
	return cfg
}

// release returns the internal buffers to their pools.
func (cfg *runConfig) release() {
	bufPoolOut.Put(cfg.bufOut)
	bufPoolErr.Put(cfg.bufErr)
}

// WithEnvVar adds or overrides an environment variable for this run
func WithEnvVar(key, value string) RunOption {
	return func(config *runConfig) {
		config.env[key] = value
	}
}

// WithRunWorkdir overrides the remote working directory for this run
func WithRunWorkdir(dir string) RunOption {
	return func(config *runConfig) {
		config.workdir = dir
	}
}

// WithStdin sets the input reader for the command
func WithStdin(stdin io.Reader) RunOption {
	return func(config *runConfig) {
		config.stdin = stdin
	}
}

// WithStdout sets a custom writer for live stdout
func WithStdout(stdout io.Writer) RunOption {
	return func(config *runConfig) {
		config.stdout = stdout
	}
}

// WithStderr sets a custom writer for live stderr
func WithStderr(stderr io.Writer) RunOption {
	return func(config *runConfig) {
		config.stderr = stderr
	}
}

// WithoutPTY prevents PTY allocation for this run even when the command text
// matches the interactive heuristics. Required whenever binary data travels
// on stdin: a tty's line discipline rewrites CR/LF and treats bytes like
// 0x03/0x04 as control characters, corrupting the stream.
func WithoutPTY() RunOption {
	return func(config *runConfig) {
		config.disablePTY = true
	}
}

// WithoutBuffering disables internal buffering of output, so only provided stdout/stderr writers receive data
func WithoutBuffering() RunOption {
	return func(config *runConfig) {
		config.disableBuffer = true
	}
}
