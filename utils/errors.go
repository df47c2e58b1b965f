// Copyright © NGRSoftlab 2020-2025

package utils

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotOpen = errors.New("session not open")
	ErrClientNil      = errors.New("client is nil")
)

// ExitCodeMapper translates process exit codes into human-readable messages
type ExitCodeMapper struct {
	codes map[int]string
}

// NewDefaultExitCodeMapper returns an ExitCodeMapper initialized with common shell and system exit code messages
func NewDefaultExitCodeMapper() *ExitCodeMapper {
	return &ExitCodeMapper{codes: map[int]string{
		1:   "general error",
		2:   "invalid usage of shell builtins",
		126: "permission denied (cannot execute)",
		127: "command not found",
		128: "invalid exit argument",

		64: "command line usage error",
		65: "data format error",
		66: "cannot open input file",
		69: "service unavailable",
		70: "internal software error",
		71: "system error",
		73: "cannot create output file",
		74: "input/output error",
		75: "temporary failure, please retry",
		76: "remote protocol error",
		77: "permission denied",
		78: "configuration error",

		130: "script terminated by Control-C",
		137: "process killed (SIGKILL)",
		139: "segmentation fault (SIGSEGV)",
		141: "broken pipe (SIGPIPE)",
		143: "terminated by signal (SIGTERM)",

		255: "ssh connection error or no exit status",
	}}
}

const maxSignal = 64 // highest signal number to consider

// Lookup returns a descriptive message for the given exit code.
// If the code is in the predefined map, that message is used.
// Codes 129–(128+maxSignal) map to "killed by signal N".
// All others default to "exit <code>".
func (em *ExitCodeMapper) Lookup(code int) string {
	if msg, ok := em.codes[code]; ok {
		return msg
	}
	if code > 128 && code <= 128+maxSignal {
		return fmt.Sprintf("killed by signal %d", code-128)
	}
	return fmt.Sprintf("exit %d", code)
}
