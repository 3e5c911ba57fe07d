package transform

import (
	"sort"

	"rxclaims/internal/schema"
)

// DefaultTopChains is the number of cheapest chains kept per drug.
const DefaultTopChains = 2

// TopChains keeps, per ndc, the k metrics rows with the lowest average unit
// price and lists them by chain name. Rows are ordered by ndc.
func TopChains(metrics []schema.MetricsRow, k int) []schema.TopChainsRow {
	parts := TopK(metrics,
		func(m schema.MetricsRow) string { return m.NDC },
		func(a, b schema.MetricsRow) bool { return a.AvgPrice < b.AvgPrice },
		k,
	)

	out := make([]schema.TopChainsRow, 0, len(parts))
	for _, p := range parts {
		chains := make([]schema.ChainPrice, len(p.Rows))
		for i, m := range p.Rows {
			chains[i] = schema.ChainPrice{Name: m.Chain, AvgPrice: m.AvgPrice}
		}
		sort.SliceStable(chains, func(i, j int) bool { return chains[i].Name < chains[j].Name })
		out = append(out, schema.TopChainsRow{NDC: p.Key, Chain: chains})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NDC < out[j].NDC })
	return out
}
