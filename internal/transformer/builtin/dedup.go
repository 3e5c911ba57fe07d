package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"rxclaims/pkg/records"
)

// DeDup collapses records that share the same business key.
//
// Policies:
//
//   - "keep-first": keep the earliest occurrence (default)
//   - "keep-last" : keep the latest occurrence
//
// Keys are hashed with xxh3 (128-bit) so the winner map does not hold a copy
// of every composite key string. Records missing a key field pass through
// untouched, after the keyed winners.
type DeDup struct {
	// Keys are the field names forming the business key, e.g. ["claim_id"].
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string
}

// Apply returns the winning record per key, in the original order of the
// winners.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}
	keepLast := strings.EqualFold(strings.TrimSpace(d.Policy), "keep-last")

	winners := make(map[xxh3.Uint128]int, len(in))
	var passthrough []int
	var b strings.Builder

	for i, r := range in {
		key, ok := d.keyOf(r, &b)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		if _, seen := winners[key]; !seen || keepLast {
			winners[key] = i
		}
	}

	idx := make([]int, 0, len(winners))
	for _, i := range winners {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]records.Record, 0, len(idx)+len(passthrough))
	for _, i := range idx {
		out = append(out, in[i])
	}
	for _, i := range passthrough {
		out = append(out, in[i])
	}
	return out
}

func (d DeDup) keyOf(r records.Record, b *strings.Builder) (xxh3.Uint128, bool) {
	b.Reset()
	for n, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return xxh3.Uint128{}, false
		}
		if n > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return xxh3.HashString128(b.String()), true
}
