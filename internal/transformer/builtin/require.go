// Package builtin contains the reusable record transformers of the reader.
package builtin

import "rxclaims/pkg/records"

// Require removes any record missing a value for one of Fields. Only an
// absent or nil value is missing; an empty string is a value. Parsers that
// treat empty cells as null (CSV) emit nil for them.
type Require struct {
	Fields []string
}

// Apply keeps only records whose required fields are present and non-nil.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// Project narrows every record to Fields. Absent fields become nil so a later
// Require can drop the row.
type Project struct {
	Fields []string
}

func (p Project) Apply(in []records.Record) []records.Record {
	for i, rec := range in {
		out := make(records.Record, len(p.Fields))
		for _, f := range p.Fields {
			out[f] = rec[f]
		}
		in[i] = out
	}
	return in
}
