package transform

import (
	"reflect"
	"testing"

	"rxclaims/internal/schema"
)

func TestOrdinalRank_TiesKeepInputOrder(t *testing.T) {
	vals := []int{30, 10, 20, 10, 30}
	got := OrdinalRank(vals, func(a, b int) bool { return a < b })
	want := []int{4, 1, 3, 2, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranks = %v; want %v", got, want)
	}
}

func TestTopK(t *testing.T) {
	type row struct {
		g string
		v int
	}
	rows := []row{{"b", 3}, {"a", 1}, {"b", 1}, {"a", 1}, {"b", 2}, {"a", 0}}
	key := func(r row) string { return r.g }
	less := func(x, y row) bool { return x.v < y.v }

	got := TopK(rows, key, less, 2)
	want := []Partition[string, row]{
		{Key: "b", Rows: []row{{"b", 1}, {"b", 2}}},
		{Key: "a", Rows: []row{{"a", 1}, {"a", 0}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TopK = %+v; want %+v", got, want)
	}

	if got := TopK(rows, key, less, 0); got != nil {
		t.Fatalf("k=0: %+v; want nil", got)
	}
	if got := TopK(rows, key, less, 10); len(got[0].Rows) != 3 || len(got[1].Rows) != 3 {
		t.Fatalf("k=10 should keep everything: %+v", got)
	}
}

func TestTopChains_TieAtBoundaryAndOrdering(t *testing.T) {
	metrics := []schema.MetricsRow{
		{NDC: "d2", Chain: "zeta", AvgPrice: 5},
		{NDC: "d2", Chain: "beta", AvgPrice: 5},
		{NDC: "d2", Chain: "alpha", AvgPrice: 5},
		{NDC: "d1", Chain: "only", AvgPrice: 1},
	}

	got := TopChains(metrics, 2)
	want := []schema.TopChainsRow{
		{NDC: "d1", Chain: []schema.ChainPrice{{Name: "only", AvgPrice: 1}}},
		{NDC: "d2", Chain: []schema.ChainPrice{{Name: "beta", AvgPrice: 5}, {Name: "zeta", AvgPrice: 5}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TopChains = %+v; want %+v", got, want)
	}
	if got := TopChains(metrics, 0); len(got) != 0 {
		t.Fatalf("k=0: %+v", got)
	}
}

func TestMostPrescribedQuantity_TiesByFirstAppearance(t *testing.T) {
	var rows []schema.StagingRow
	for _, q := range []float64{7, 3, 3, 9, 7, 1} {
		rows = append(rows, schema.StagingRow{Claim: schema.Claim{NDC: "d", Quantity: q}})
	}

	got := MostPrescribedQuantity(rows, 3)
	want := []schema.QuantityRow{{NDC: "d", MostPrescribedQuantity: []float64{3, 7, 9}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("quantities = %+v; want %+v", got, want)
	}
}
