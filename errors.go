// Copyright © NGRSoftlab 2020-2025

package tierup

import "errors"

// Transfer error categories. Every error returned by Pusher.Push wraps
// exactly one of these, so callers can classify failures with errors.Is
// and decide whether a whole-transfer restart makes sense.
var (
	// ErrSource - local source file missing, unreadable, or not regular.
	ErrSource = errors.New("source file unusable")

	// ErrChannel - the remote channel dropped or the operation was
	// canceled mid-transfer. The partial destination file is left in
	// place; a restart clears it.
	ErrChannel = errors.New("transfer interrupted")

	// ErrPrep - deleting the stale destination or creating its parent
	// directory failed.
	ErrPrep = errors.New("remote prepare failed")

	// ErrWrite - a chunk write failed on the remote side. Chunks are not
	// retried individually; the caller restarts the whole transfer.
	ErrWrite = errors.New("remote write failed")

	// ErrVerify - the final remote stat failed or reported an unexpected
	// size, indicating a likely corrupted transfer.
	ErrVerify = errors.New("transfer verification failed")
)
