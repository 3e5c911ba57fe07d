// Package csv parses delimited text with a header row into records.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"rxclaims/internal/config"
	"rxclaims/internal/logging"
	"rxclaims/pkg/records"
)

// Options configures the CSV parser. Zero values fall back to sensible
// defaults.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0 and there is no header, fixes the row width
	// and names columns col_0..col_N-1.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys.
	HeaderMap map[string]string
}

// FromConfigOptions builds Options from a source's option bag. Headers are
// on by default.
func FromConfigOptions(o config.Options) Options {
	return Options{
		HasHeader:      o.Bool("has_header", true),
		Comma:          o.Rune("comma", ','),
		TrimSpace:      o.Bool("trim_space", true),
		ExpectedFields: o.Int("expected_fields", 0),
		HeaderMap:      o.StringMap("header_map"),
	}
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs but not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit caps per-file log lines for malformed rows.
const skipLogLimit = 100

// Parse consumes CSV rows from r and returns them with the number of rows
// skipped for parse errors or width mismatches. An empty input yields no
// rows and no error.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	var (
		headers []string
		out     []records.Record
		skipped int
	)

	if p.opt.HasHeader {
		h, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				logging.Debug("csv: skipping row", zap.Int("line", line), zap.Error(err))
			}
			skipped++
			continue
		}
		if len(headers) > 0 && len(row) != len(headers) {
			if skipped < skipLogLimit {
				logging.Debug("csv: skipping row with wrong width",
					zap.Int("line", line), zap.Int("want", len(headers)), zap.Int("got", len(row)))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		out = append(out, rec)
	}

	return out, skipped, nil
}

func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil turns an empty cell into a null so Require can drop the row.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders maps headers through HeaderMap, otherwise lowercases them
// and replaces spaces with underscores. A UTF-8 BOM on the first cell is
// stripped.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if m, ok := opt.HeaderMap[c]; ok {
			res[i] = m
			continue
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
