// Copyright © NGRSoftlab 2020-2025

package tierup

// Progress is a single observability report for a long-running operation.
type Progress struct {
	Activity string  // what is being done, e.g. `push "payload.tar"`
	Status   string  // current step detail, e.g. "2.0 MiB / 2.5 MiB"
	Percent  float64 // completion, 0 to 100
}

// ProgressFunc receives progress reports. The pusher calls it after every
// chunk, so implementations should be cheap. A nil ProgressFunc disables
// reporting.
type ProgressFunc func(p Progress)
