// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"context"
	"testing"

	"github.com/ngrsoftlab/tierup/command"
	"github.com/ngrsoftlab/tierup/parser"
)

// fakeRunner records commands and run options; stdout is scripted per
// rendered command string.
type fakeRunner struct {
	cmds   []string
	opts   [][]RunOption
	stdout map[string]string
}

func (f *fakeRunner) Run(ctx context.Context, cmd *command.Command, dst any, opts ...RunOption) (*parser.RawResult, error) {
	rendered := cmd.String()
	f.cmds = append(f.cmds, rendered)
	f.opts = append(f.opts, opts)

	result := parser.NewRawResult(rendered)
	result.Stdout = f.stdout[rendered]
	if cmd.Parser != nil && dst != nil {
		if err := cmd.Parser.Parse(result, dst); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (f *fakeRunner) Close() error { return nil }

func TestHostCommandStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"remove", removeCmd("/tmp/tierup/payload.tar").String(), "rm -f -- /tmp/tierup/payload.tar"},
		{"remove_spaced", removeCmd("/tmp/my file").String(), "rm -f -- '/tmp/my file'"},
		{"mkdir", mkdirCmd("/tmp/tierup", 0o755).String(), "mkdir -p -m 0755 -- /tmp/tierup"},
		{"mkdir_private", mkdirCmd("/srv/data", 0o700).String(), "mkdir -p -m 0700 -- /srv/data"},
		{"append", appendCmd("/tmp/tierup/payload.tar").String(), "cat >> /tmp/tierup/payload.tar"},
		{"append_spaced", appendCmd("/tmp/my file").String(), "cat >> '/tmp/my file'"},
		{"stat", statCmd("/tmp/tierup/payload.tar").String(), "stat -c %s -- /tmp/tierup/payload.tar"},
		{"resolve", resolveCmd("stage/payload.tar").String(), "readlink -f -- stage/payload.tar"},
		{"exists", existsCmd("/etc/hostname").String(), "[ -e /etc/hostname ] && echo true || echo false"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q; want %q", tc.got, tc.want)
			}
		})
	}
}

func TestHostCommandParsers(t *testing.T) {
	if statCmd("/f").Parser == nil {
		t.Error("stat command needs a size parser")
	}
	if existsCmd("/f").Parser == nil {
		t.Error("exists command needs a bool parser")
	}
	if removeCmd("/f").Parser != nil {
		t.Error("remove command should have no parser")
	}
}

// A destination like /tmp/results.bin contains "su" as a substring, so the
// interactive heuristic would request a PTY; chunk writes must override it or
// the tty mangles binary stdin.
func TestHostAppendChunkSuppressesPTY(t *testing.T) {
	fake := &fakeRunner{}
	host := NewHost(fake)

	binary := []byte{0x03, 0x04, 0x0d, 0x0a, 0xff}
	if err := host.AppendChunk(context.Background(), "/tmp/results.bin", binary); err != nil {
		t.Fatalf("AppendChunk: %v", err)
	}

	if len(fake.cmds) != 1 || fake.cmds[0] != "cat >> /tmp/results.bin" {
		t.Fatalf("cmds=%v", fake.cmds)
	}
	if !(&Client{}).requiresPTY(fake.cmds[0]) {
		t.Fatal("command no longer trips the PTY heuristic; test setup is stale")
	}

	cfg := newRunConfig("", nil, fake.opts[0]...)
	defer cfg.release()
	if !cfg.disablePTY {
		t.Error("chunk write did not veto PTY allocation")
	}
	if cfg.stdin == nil {
		t.Error("chunk bytes were not attached as stdin")
	}
}

func TestHostAllCommandsSuppressPTY(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"stat -c %s -- sudoers.d":                     "10",
		"readlink -f -- sudoers.d":                    "/etc/sudoers.d",
		"[ -e sudoers.d ] && echo true || echo false": "true",
	}}
	host := NewHost(fake)
	ctx := context.Background()

	if err := host.Remove(ctx, "sudoers.d"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := host.MkdirAll(ctx, "sudoers.d", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if _, err := host.Stat(ctx, "sudoers.d"); err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if _, err := host.Exists(ctx, "sudoers.d"); err != nil {
		t.Fatalf("Exists: %v", err)
	}

	for i, opts := range fake.opts {
		cfg := newRunConfig("", nil, opts...)
		if !cfg.disablePTY {
			t.Errorf("command %q did not veto PTY allocation", fake.cmds[i])
		}
		cfg.release()
	}
}

func TestHostStatResolvesRemotePath(t *testing.T) {
	fake := &fakeRunner{stdout: map[string]string{
		"stat -c %s -- stage/payload.tar":  "2621440\n",
		"readlink -f -- stage/payload.tar": "/home/deploy/stage/payload.tar\n",
	}}
	host := NewHost(fake)

	info, err := host.Stat(context.Background(), "stage/payload.tar")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != 2621440 {
		t.Errorf("Size=%d; want 2621440", info.Size)
	}
	if info.Path != "/home/deploy/stage/payload.tar" {
		t.Errorf("Path=%q; want remote-resolved absolute path", info.Path)
	}
}
