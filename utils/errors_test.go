// Copyright © NGRSoftlab 2020-2025

package utils

import "testing"

func TestExitCodeMapperLookup(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"mapped_general", 1, "general error"},
		{"mapped_not_found", 127, "command not found"},
		{"mapped_sigkill", 137, "process killed (SIGKILL)"},
		{"mapped_ssh", 255, "ssh connection error or no exit status"},
		{"signal_range", 131, "killed by signal 3"},
		{"plain_code", 42, "exit 42"},
		{"zero", 0, "exit 0"},
		{"negative", -1, "exit -1"},
	}
	m := NewDefaultExitCodeMapper()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Lookup(tc.code); got != tc.want {
				t.Errorf("Lookup(%d)=%q; want %q", tc.code, got, tc.want)
			}
		})
	}
}
