// Copyright © NGRSoftlab 2020-2025

package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// SizeParser converts the output of `stat -c %s` (a byte count on a single
// line) into *int64.
type SizeParser struct{}

// Parse trims raw.Stdout and sets dst.(*int64) to the parsed byte count.
func (p *SizeParser) Parse(raw *RawResult, dst any) error {
	size, ok := dst.(*int64)
	if !ok {
		return fmt.Errorf("dst must be *int64, got %T", dst)
	}
	text := strings.TrimSpace(raw.Stdout)
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("parse size %q: %w", text, err)
	}
	if n < 0 {
		return fmt.Errorf("negative size %d", n)
	}
	*size = n
	return nil
}
