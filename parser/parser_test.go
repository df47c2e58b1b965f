// Copyright © NGRSoftlab 2020-2025

package parser

import (
	"strings"
	"testing"
)

func TestBoolParser(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    bool
		wantErr bool
	}{
		{"true", "true", true, false},
		{"false", "false", false, false},
		{"yes_with_newline", "yes\n", true, false},
		{"upper_case", "TRUE", true, false},
		{"numeric_one", "1", true, false},
		{"numeric_zero", "0", false, false},
		{"garbage", "maybe", false, true},
		{"empty", "", false, true},
	}
	p := &BoolParser{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got bool
			err := p.Parse(&RawResult{Stdout: tc.stdout}, &got)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v; wantErr=%v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("got %v; want %v", got, tc.want)
			}
		})
	}
}

func TestBoolParserWrongDst(t *testing.T) {
	p := &BoolParser{}
	var dst string
	err := p.Parse(&RawResult{Stdout: "true"}, &dst)
	if err == nil || !strings.Contains(err.Error(), "must be *bool") {
		t.Errorf("err=%v; want dst type error", err)
	}
}

func TestSizeParser(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    int64
		wantErr string
	}{
		{"zero", "0\n", 0, ""},
		{"plain", "2621440", 2621440, ""},
		{"padded", "  1024  \n", 1024, ""},
		{"negative", "-1", 0, "negative size"},
		{"not_a_number", "N/A", 0, "parse size"},
		{"empty", "", 0, "parse size"},
	}
	p := &SizeParser{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got int64
			err := p.Parse(&RawResult{Stdout: tc.stdout}, &got)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Errorf("err=%v; want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %d; want %d", got, tc.want)
			}
		})
	}
}

func TestSizeParserWrongDst(t *testing.T) {
	p := &SizeParser{}
	var dst int
	err := p.Parse(&RawResult{Stdout: "1"}, &dst)
	if err == nil || !strings.Contains(err.Error(), "must be *int64") {
		t.Errorf("err=%v; want dst type error", err)
	}
}

func TestNewRawResult(t *testing.T) {
	raw := NewRawResult("stat -c %s -- /tmp/f")
	if raw.Command != "stat -c %s -- /tmp/f" {
		t.Errorf("Command=%q", raw.Command)
	}
	if raw.ExitCode != 0 || raw.Err != nil {
		t.Errorf("fresh result not zeroed: %+v", raw)
	}
}
