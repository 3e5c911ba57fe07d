// Package reader is the schema-enforcing reader: it turns source files into
// records that strictly match a schema, silently dropping rows with a
// missing or unparseable field.
package reader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rxclaims/internal/config"
	"rxclaims/internal/datasource"
	"rxclaims/internal/datasource/file"
	"rxclaims/internal/etlerr"
	"rxclaims/internal/logging"
	"rxclaims/internal/parser"
	"rxclaims/internal/schema"
	"rxclaims/internal/transformer"
	"rxclaims/internal/transformer/builtin"
	"rxclaims/pkg/records"
)

// openSource is a test seam; production reads local files.
var openSource = func(path string) datasource.Source { return file.NewLocal(path) }

// Stats counts what a read kept and dropped.
type Stats struct {
	Files        int
	Rows         int // rows kept
	Dropped      int // rows with a null or unparseable field
	Malformed    int // rows the parser could not split
	SkippedFiles []string
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Rows += o.Rows
	s.Dropped += o.Dropped
	s.Malformed += o.Malformed
	s.SkippedFiles = append(s.SkippedFiles, o.SkippedFiles...)
}

// Enforce returns the transformer chain that makes records match s:
// projection onto the schema fields, normalization, coercion and the
// null filter.
func Enforce(s schema.Schema) transformer.Chain {
	types := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		types[f.Name] = string(f.Type)
	}
	names := s.Names()
	return transformer.Chain{
		builtin.Project{Fields: names},
		builtin.Normalize{},
		builtin.Coerce{Types: types},
		builtin.Require{Fields: names},
	}
}

// ReadFile reads one file in the given format and enforces s.
//
// An unknown format yields *etlerr.FormatError before the file is touched;
// an unreadable path yields *etlerr.IOError; content that does not decode
// in the declared format yields *etlerr.FormatError.
func ReadFile(ctx context.Context, path, format string, s schema.Schema, opts config.Options) ([]records.Record, Stats, error) {
	p, err := parser.ForFormat(format, opts)
	if err != nil {
		return nil, Stats{}, err
	}

	rc, err := openSource(path).Open(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	defer rc.Close()

	recs, malformed, err := p.Parse(rc)
	if err != nil {
		return nil, Stats{}, etlerr.Format(format, path, err)
	}

	parsed := len(recs)
	recs = Enforce(s).Apply(recs)
	st := Stats{Files: 1, Rows: len(recs), Dropped: parsed - len(recs), Malformed: malformed}

	logging.Debug("reader: file read",
		zap.String("path", path),
		zap.String("schema", s.Name),
		zap.Int("rows", st.Rows),
		zap.Int("dropped", st.Dropped),
		zap.Int("malformed", st.Malformed),
	)
	return recs, st, nil
}

// ReadSource reads every file of a source folder in name order and returns
// the union of their records, then applies extra to the union. A missing
// folder yields *etlerr.NotFoundError.
func ReadSource(ctx context.Context, src config.Source, s schema.Schema, extra ...transformer.Transformer) ([]records.Record, Stats, error) {
	if _, err := parser.ForFormat(src.Format, src.Options); err != nil {
		return nil, Stats{}, err
	}
	listing, err := file.ListSource(src.Path, src.Format)
	if err != nil {
		return nil, Stats{}, err
	}
	for _, name := range listing.Skipped {
		logging.Warn("reader: skipping file with mismatched extension",
			zap.String("dir", src.Path), zap.String("file", name), zap.String("format", src.Format))
	}

	st := Stats{SkippedFiles: listing.Skipped}
	var out []records.Record
	for _, path := range listing.Files {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}
		recs, fst, err := ReadFile(ctx, path, src.Format, s, src.Options)
		if err != nil {
			return nil, st, err
		}
		st.add(fst)
		out = append(out, recs...)
	}

	if len(extra) > 0 {
		before := len(out)
		out = transformer.Chain(extra).Apply(out)
		st.Dropped += before - len(out)
		st.Rows = len(out)
	}
	return out, st, nil
}

// Convert maps coerced records to entities.
func Convert[T any](recs []records.Record, fn func(records.Record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(recs))
	for i, r := range recs {
		v, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Pharmacies reads the pharmacy directory folder.
func Pharmacies(ctx context.Context, src config.Source) ([]schema.Pharmacy, Stats, error) {
	recs, st, err := ReadSource(ctx, src, schema.PharmaciesSchema)
	if err != nil {
		return nil, st, err
	}
	out, err := Convert(recs, schema.PharmacyFromRecord)
	return out, st, err
}

// Reverts reads the reverts folder. extra runs on the union of all files,
// e.g. a DeDup on claim_id.
func Reverts(ctx context.Context, src config.Source, extra ...transformer.Transformer) ([]schema.Revert, Stats, error) {
	recs, st, err := ReadSource(ctx, src, schema.RevertsSchema, extra...)
	if err != nil {
		return nil, st, err
	}
	out, err := Convert(recs, schema.RevertFromRecord)
	return out, st, err
}

// ClaimsFile reads one claims file.
func ClaimsFile(ctx context.Context, path string, src config.Source) ([]schema.Claim, Stats, error) {
	recs, st, err := ReadFile(ctx, path, src.Format, schema.ClaimsSchema, src.Options)
	if err != nil {
		return nil, st, err
	}
	out, err := Convert(recs, schema.ClaimFromRecord)
	return out, st, err
}
