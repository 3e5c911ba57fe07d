// Package metrics records operational metrics for pipeline runs behind a
// small pluggable Backend.
//
// A no-op backend is installed by default, so instrumented code can always
// call the Record helpers. Concrete backends live in subpackages (prompush,
// datadog) and are installed once at startup with SetBackend.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record helpers.
const (
	StepTotal      = "rxclaims_step_total"
	StepDuration   = "rxclaims_step_duration_seconds"
	RowsTotal      = "rxclaims_rows_total"
	ArtifactsTotal = "rxclaims_artifacts_total"

	statusSuccess = "success"
	statusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is implemented by metric sinks.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration style observation.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend buffers.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the global backend. A nil b is ignored.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush flushes the installed backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline step and observes its
// duration, labelled with the outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow adds delta to the row counter of the given kind. Kinds used by
// the pipeline are "claims", "pharmacies", "reverts", "dropped", "filtered",
// "staging" and one per written result. Non-positive deltas are ignored.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordArtifacts counts staging artifacts by action: "written", "skipped"
// or "removed".
func RecordArtifacts(job, action string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(ArtifactsTotal, float64(n), Labels{"job": job, "action": action})
}
