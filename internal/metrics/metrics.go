// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the import pipeline.
//
// It exposes a narrow Backend interface (counters and duration observations)
// behind a global, pluggable backend that defaults to a no-op, so metric
// calls are always safe even when nothing is configured. Concrete systems
// (Prometheus Pushgateway) live in subpackages, mirroring how the storage
// abstraction isolates database drivers.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes collected metrics if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordFile records one file reaching a terminal state, with its duration.
// Status is the outcome name: imported, skipped_missing_key,
// skipped_null_key, or failed.
func RecordFile(job, status string, d time.Duration) {
	lbls := Labels{"job": job, "status": status}
	backend.IncCounter("ballstats_files_total", 1, lbls)
	backend.ObserveHistogram("ballstats_file_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given kind.
//
// Kinds mirror the batch summary fields:
//   - "validated"
//   - "rejected"
//   - "dropped"
//   - "duplicates"
//   - "inserted"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ballstats_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
