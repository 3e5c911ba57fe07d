package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"rxclaims/pkg/records"
)

// Normalize trims string values and folds them to Unicode NFC, so that the
// same chain or code typed with different compositions joins and groups as
// one value. Non-breaking spaces are treated as spaces.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if !norm.NFC.IsNormalString(s) {
				s = norm.NFC.String(s)
			}
			r[k] = s
		}
	}
	return in
}
