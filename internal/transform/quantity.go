package transform

import (
	"sort"

	"rxclaims/internal/schema"
)

// DefaultTopQuantity is the number of quantities kept per drug.
const DefaultTopQuantity = 5

type quantityCount struct {
	ndc      string
	quantity float64
	count    int
}

// MostPrescribedQuantity keeps, per ndc, the k quantities filled most often
// and lists them in ascending order. Equal counts rank by first appearance.
// Rows are ordered by ndc.
func MostPrescribedQuantity(rows []schema.StagingRow, k int) []schema.QuantityRow {
	type key struct {
		ndc      string
		quantity float64
	}
	index := make(map[key]int)
	var counts []quantityCount
	for _, r := range rows {
		kk := key{r.NDC, r.Quantity}
		i, ok := index[kk]
		if !ok {
			i = len(counts)
			index[kk] = i
			counts = append(counts, quantityCount{ndc: r.NDC, quantity: r.Quantity})
		}
		counts[i].count++
	}

	parts := TopK(counts,
		func(c quantityCount) string { return c.ndc },
		func(a, b quantityCount) bool { return a.count > b.count },
		k,
	)

	out := make([]schema.QuantityRow, 0, len(parts))
	for _, p := range parts {
		qs := make([]float64, len(p.Rows))
		for i, c := range p.Rows {
			qs[i] = c.quantity
		}
		sort.Float64s(qs)
		out = append(out, schema.QuantityRow{NDC: p.Key, MostPrescribedQuantity: qs})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NDC < out[j].NDC })
	return out
}
