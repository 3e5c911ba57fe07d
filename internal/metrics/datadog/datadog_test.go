package datadog

import (
	"reflect"
	"testing"

	"rxclaims/internal/metrics"
)

type sample struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	samples []sample
	flushed bool
	closed  bool
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.samples = append(f.samples, sample{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.samples = append(f.samples, sample{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Flush() error { f.flushed = true; return nil }
func (f *fakeClient) Close() error { f.closed = true; return nil }

func TestNewBackendRequiresAddr(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("NewBackend with empty Addr: want error")
	}
}

func TestBackendForwardsSamples(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.RowsTotal, 3.9, metrics.Labels{"kind": "claims", "job": "rxclaims"})
	b.ObserveHistogram(metrics.StepDuration, 0.5, metrics.Labels{"step": "join"})
	b.IncCounter(metrics.StepTotal, 1, nil)

	want := []sample{
		{"count", metrics.RowsTotal, 3, []string{"job:rxclaims", "kind:claims"}},
		{"histogram", metrics.StepDuration, 0.5, []string{"step:join"}},
		{"count", metrics.StepTotal, 1, nil},
	}
	if !reflect.DeepEqual(fc.samples, want) {
		t.Fatalf("samples = %+v; want %+v", fc.samples, want)
	}

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !fc.flushed || !fc.closed {
		t.Fatalf("flushed=%v closed=%v; want both", fc.flushed, fc.closed)
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
