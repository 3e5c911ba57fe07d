// Package json turns JSON documents into records.Record maps.
//
// Accepted shapes:
//
//   - a top-level array of objects (the usual export format), when
//     AllowArrays is set;
//   - a single object;
//   - a stream of objects (NDJSON), optionally following the first value.
//
// Numbers are kept as json.Number so coercion decides how to map them.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"rxclaims/internal/config"
	"rxclaims/pkg/records"
)

// Options controls which top-level shapes are accepted.
//
//   - "allow_arrays" (bool, default true): a top-level array of objects is
//     expanded into records.
type Options struct {
	AllowArrays bool
}

// FromConfigOptions constructs Options from a source's option bag.
func FromConfigOptions(o config.Options) Options {
	return Options{
		AllowArrays: o.Bool("allow_arrays", true),
	}
}

// Decoder reads a stream of JSON objects one record at a time.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder constructs a Decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	d := json.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d}
}

// Next returns the next object in the stream. Non-object values are skipped.
// io.EOF is returned when the stream is exhausted.
func (d *Decoder) Next() (records.Record, error) {
	for {
		var raw any
		if err := d.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("json parser: decode: %w", err)
		}
		if m, ok := raw.(map[string]any); ok {
			return records.Record(m), nil
		}
	}
}

// DecodeAll reads every object from r.
func DecodeAll(r io.Reader, opt Options) ([]records.Record, error) {
	d := json.NewDecoder(r)
	d.UseNumber()

	var root any
	if err := d.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("json parser: decode root: %w", err)
	}

	var out []records.Record
	switch v := root.(type) {
	case map[string]any:
		out = append(out, records.Record(v))
	case []any:
		if !opt.AllowArrays {
			return nil, fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
		}
		out = make([]records.Record, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("json parser: element %d in array is not an object", i)
			}
			out = append(out, records.Record(obj))
		}
	default:
		return nil, fmt.Errorf("json parser: unsupported top-level JSON type %T", v)
	}

	// Trailing NDJSON objects after the root value.
	rest := NewDecoder(io.MultiReader(d.Buffered(), r))
	for {
		rec, err := rest.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Parser adapts DecodeAll to the parser.Parser interface.
type Parser struct{ opt Options }

// NewParser constructs a Parser.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse decodes every object from r. JSON has no per-row soft failures, so
// the skipped count is always zero.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	recs, err := DecodeAll(r, p.opt)
	return recs, 0, err
}
