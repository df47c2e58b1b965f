// Copyright © NGRSoftlab 2020-2025

package parser

import (
	"fmt"
	"strings"
)

// BoolParser converts boolean-like stdout into *bool. Used with shell
// probes such as `[ -e path ] && echo true || echo false`.
type BoolParser struct{}

// Parse trims and lower-cases raw.Stdout and sets dst.(*bool).
// Returns an error if dst is not *bool or the text isn't recognized.
func (p *BoolParser) Parse(raw *RawResult, dst any) error {
	b, ok := dst.(*bool)
	if !ok {
		return fmt.Errorf("dst must be *bool, got %T", dst)
	}
	switch strings.TrimSpace(strings.ToLower(raw.Stdout)) {
	case "1", "t", "true", "yes", "y", "on":
		*b = true
	case "0", "f", "false", "no", "n", "off":
		*b = false
	default:
		return fmt.Errorf("unrecognized bool value: %q", raw.Stdout)
	}
	return nil
}
