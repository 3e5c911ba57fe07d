// Package parser selects the physical parser for a source format tag.
package parser

import (
	"io"

	"rxclaims/internal/config"
	"rxclaims/internal/etlerr"
	pcsv "rxclaims/internal/parser/csv"
	pjson "rxclaims/internal/parser/json"
	"rxclaims/pkg/records"
)

// Parser turns raw bytes into records. The int result counts rows skipped
// because they could not be parsed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}

// ForFormat returns the parser registered for format. Unknown tags yield a
// *etlerr.FormatError.
func ForFormat(format string, opts config.Options) (Parser, error) {
	switch format {
	case "json":
		return pjson.NewParser(pjson.FromConfigOptions(opts)), nil
	case "csv":
		return pcsv.NewParser(pcsv.FromConfigOptions(opts)), nil
	}
	return nil, etlerr.Format(format, "", nil)
}
