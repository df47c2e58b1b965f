// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"testing"
	"time"
)

func TestRequiresPTY(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want bool
	}{
		{"sudo", "sudo env A=1 sh /tmp/tierup/web.sh", true},
		{"passwd", "passwd deploy", true},
		{"plain", "mkdir -p -- /var/www", false},
		{"substring_match", "cat >> /tmp/results.bin", true},
	}
	cl := &Client{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cl.requiresPTY(tc.cmd); got != tc.want {
				t.Errorf("requiresPTY(%q)=%v; want %v", tc.cmd, got, tc.want)
			}
		})
	}
}

// Run closes the session explicitly when the context ends and again through
// its defer; the second close must not block on the session limiter.
func TestSessionCloseReleasesSlotOnce(t *testing.T) {
	cl := &Client{sessionLimiter: make(chan struct{}, 1)}
	cl.sessionLimiter <- struct{}{}

	sess := &Session{client: cl}
	if err := sess.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if len(cl.sessionLimiter) != 0 {
		t.Fatal("slot was not released")
	}

	done := make(chan struct{})
	go func() {
		sess.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second Close blocked on the session limiter")
	}

	// the slot stays free for the next session
	select {
	case cl.sessionLimiter <- struct{}{}:
	default:
		t.Error("limiter slot not reusable after double close")
	}
}
