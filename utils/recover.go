// Copyright © NGRSoftlab 2020-2025

package utils

import (
	"fmt"
	"runtime/debug"
)

// Recover recovers from a panic and returns it as an error.
func Recover() (err error) {
	if r := recover(); r != nil {
		err = fmt.Errorf("recovering from panic: %v\n%s", r, debug.Stack())
	}
	return err
}
