// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRunConfigDefaults(t *testing.T) {
	cfg := newRunConfig("/srv", map[string]string{"A": "1"})
	defer cfg.release()

	if cfg.workdir != "/srv" {
		t.Errorf("workdir=%q; want /srv", cfg.workdir)
	}
	if cfg.env["A"] != "1" {
		t.Errorf("env=%v; want A=1", cfg.env)
	}
	if cfg.stdout != cfg.bufOut || cfg.stderr != cfg.bufErr {
		t.Error("default writers should be the internal buffers")
	}
}

func TestNewRunConfigEnvCopyIsolated(t *testing.T) {
	base := map[string]string{"A": "1"}
	cfg := newRunConfig("", base, WithEnvVar("A", "2"), WithEnvVar("B", "3"))
	defer cfg.release()

	if base["A"] != "1" {
		t.Error("base env was mutated by run options")
	}
	if cfg.env["A"] != "2" || cfg.env["B"] != "3" {
		t.Errorf("env=%v; want overrides applied", cfg.env)
	}
}

func TestWithRunWorkdir(t *testing.T) {
	cfg := newRunConfig("/srv", nil, WithRunWorkdir("/tmp/stage"))
	defer cfg.release()
	if cfg.workdir != "/tmp/stage" {
		t.Errorf("workdir=%q; want /tmp/stage", cfg.workdir)
	}
}

func TestWithStdoutTeesToBuffer(t *testing.T) {
	var external bytes.Buffer
	cfg := newRunConfig("", nil, WithStdout(&external))
	defer cfg.release()

	if _, err := cfg.stdout.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if external.String() != "hello" {
		t.Errorf("external=%q; want hello", external.String())
	}
	if cfg.bufOut.String() != "hello" {
		t.Errorf("bufOut=%q; internal buffer should also capture output", cfg.bufOut.String())
	}
}

func TestWithoutBuffering(t *testing.T) {
	var external bytes.Buffer
	cfg := newRunConfig("", nil, WithStdout(&external), WithoutBuffering())
	defer cfg.release()

	if _, err := cfg.stdout.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if external.String() != "hello" {
		t.Errorf("external=%q; want hello", external.String())
	}
	if cfg.bufOut.Len() != 0 {
		t.Errorf("bufOut=%q; want empty with buffering disabled", cfg.bufOut.String())
	}
}

func TestWithoutPTY(t *testing.T) {
	cfg := newRunConfig("", nil, WithoutPTY())
	defer cfg.release()
	if !cfg.disablePTY {
		t.Error("disablePTY was not set")
	}
}

func TestWithStdin(t *testing.T) {
	cfg := newRunConfig("", nil, WithStdin(strings.NewReader("chunk")))
	defer cfg.release()
	if cfg.stdin == nil {
		t.Error("stdin was not set")
	}
}
