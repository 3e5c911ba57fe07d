package bench

import (
	"context"
	"fmt"
	"testing"

	"rxclaims/internal/reader"
	"rxclaims/internal/schema"
	"rxclaims/internal/storage"
	"rxclaims/internal/transform"
	"rxclaims/pkg/records"
)

// BenchmarkEndToEnd exercises the in-memory hot path of a run:
//   - schema enforcement of raw claim records (project, normalize, coerce, require)
//   - join, metrics, top chains and quantities
//   - batching of the metrics rows into a fake COPY function
//
// No files or databases are involved.
// Run with:
//
//	go test -run=^$ -bench ^BenchmarkEndToEnd$ -cpuprofile cpu.out -memprofile mem.out -count=1
func BenchmarkEndToEnd(b *testing.B) {
	const (
		nClaims     = 20000
		nPharmacies = 200
		nDrugs      = 50
	)

	raw := make([]records.Record, nClaims)
	for i := range raw {
		raw[i] = records.Record{
			"id":        fmt.Sprintf("c%06d", i),
			"ndc":       fmt.Sprintf("d%04d", i%nDrugs),
			"npi":       fmt.Sprintf("p%04d", i%nPharmacies),
			"quantity":  fmt.Sprintf("%d", 1+i%9),
			"price":     fmt.Sprintf("%d.%02d", 10+i%90, i%100),
			"timestamp": "2024-03-01T12:00:00",
		}
	}
	pharmacies := make([]schema.Pharmacy, nPharmacies)
	for i := range pharmacies {
		pharmacies[i] = schema.Pharmacy{Chain: fmt.Sprintf("chain_%d", i%7), NPI: fmt.Sprintf("p%04d", i)}
	}
	var reverts []schema.Revert
	for i := 0; i < nClaims; i += 10 {
		reverts = append(reverts, schema.Revert{ID: fmt.Sprintf("r%06d", i), ClaimID: fmt.Sprintf("c%06d", i)})
	}

	enforce := reader.Enforce(schema.ClaimsSchema)
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}
	columns := []string{"ndc", "npi", "reverted", "fills", "avg_price", "total_price"}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		// Enforce mutates records in place; give each iteration fresh copies.
		b.StopTimer()
		in := make([]records.Record, len(raw))
		for i, r := range raw {
			in[i] = r.Clone()
		}
		b.StartTimer()

		claims, err := reader.Convert(enforce.Apply(in), schema.ClaimFromRecord)
		if err != nil {
			b.Fatalf("convert: %v", err)
		}
		res := transform.Run(claims, pharmacies, reverts, transform.DefaultOptions())

		rows := make([][]any, len(res.Metrics))
		for i, m := range res.Metrics {
			rows[i] = []any{m.NDC, m.NPI, int64(m.Reverted), int64(m.Fills), m.AvgPrice, m.TotalPrice}
		}
		if _, err := storage.LoadBatches(ctx, columns, rows, 4096, copyFn); err != nil {
			b.Fatalf("LoadBatches: %v", err)
		}
	}
}
