// Package transformer defines record-level transformations applied between
// parsing and entity conversion.
package transformer

import "rxclaims/pkg/records"

// Transformer maps a batch of records to a new batch. Implementations may
// reuse the input slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Func adapts a plain function to Transformer.
type Func func([]records.Record) []records.Record

func (f Func) Apply(in []records.Record) []records.Record { return f(in) }
