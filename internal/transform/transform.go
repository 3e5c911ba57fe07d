// Package transform turns staged claims into the three analytics results.
package transform

import "rxclaims/internal/schema"

// Options tunes the transforms.
type Options struct {
	TopChains   int
	TopQuantity int
	Metrics     MetricsOptions
}

// DefaultOptions returns the thresholds used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TopChains:   DefaultTopChains,
		TopQuantity: DefaultTopQuantity,
		Metrics:     MetricsOptions{Round: true, Precision: DefaultPrecision},
	}
}

// Results holds the outputs of one run.
type Results struct {
	Metrics                []schema.MetricsRow
	TopChains              []schema.TopChainsRow
	MostPrescribedQuantity []schema.QuantityRow

	// StagingRows is the number of joined rows the results were built from.
	StagingRows int
}

// Run joins the inputs and computes every result. Top chains are ranked on
// the metrics as they are materialized, so rounding can affect tie order.
func Run(claims []schema.Claim, pharmacies []schema.Pharmacy, reverts []schema.Revert, opts Options) Results {
	staging := Join(claims, pharmacies, reverts)
	metrics := Metrics(staging, opts.Metrics)
	return Results{
		Metrics:                metrics,
		TopChains:              TopChains(metrics, opts.TopChains),
		MostPrescribedQuantity: MostPrescribedQuantity(staging, opts.TopQuantity),
		StagingRows:            len(staging),
	}
}
