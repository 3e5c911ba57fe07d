package transform

import (
	"math"

	"github.com/shopspring/decimal"

	"rxclaims/internal/schema"
)

// DefaultPrecision is the number of decimals kept for prices.
const DefaultPrecision = 2

// MetricsOptions controls rounding of aggregated prices.
type MetricsOptions struct {
	Round     bool
	Precision int32
}

type groupKey struct {
	ndc, npi, chain string
}

type accumulator struct {
	row      schema.MetricsRow
	unitSum  float64
	priceSum float64
}

// Metrics aggregates staging rows per (ndc, npi, chain). Groups are returned
// in the order their first row was seen.
func Metrics(rows []schema.StagingRow, opts MetricsOptions) []schema.MetricsRow {
	index := make(map[groupKey]int)
	var accs []*accumulator

	for _, r := range rows {
		k := groupKey{r.NDC, r.NPI, r.Chain}
		i, ok := index[k]
		if !ok {
			i = len(accs)
			index[k] = i
			accs = append(accs, &accumulator{
				row: schema.MetricsRow{NDC: r.NDC, NPI: r.NPI, Chain: r.Chain},
			})
		}
		a := accs[i]
		a.row.Fills++
		if r.RevertID != nil {
			a.row.Reverted++
		}
		a.unitSum += r.UnitPrice
		a.priceSum += r.Price
	}

	out := make([]schema.MetricsRow, len(accs))
	for i, a := range accs {
		a.row.AvgPrice = a.unitSum / float64(a.row.Fills)
		a.row.TotalPrice = a.priceSum
		if opts.Round {
			a.row.AvgPrice = round(a.row.AvgPrice, opts.Precision)
			a.row.TotalPrice = round(a.row.TotalPrice, opts.Precision)
		}
		out[i] = a.row
	}
	return out
}

// round rounds half away from zero. Non-finite values are returned as is.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
