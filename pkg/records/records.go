// Package records defines the generic row shape passed between parsers and
// transformers before rows are converted into typed entities.
package records

// Record is one decoded row keyed by field name.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
