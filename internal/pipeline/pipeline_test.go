package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxclaims/internal/config"
	"rxclaims/internal/etlerr"
	"rxclaims/internal/metrics"
	"rxclaims/internal/schema"
	"rxclaims/internal/staging"
)

type recorded struct {
	name   string
	value  float64
	labels metrics.Labels
}

type fakeBackend struct {
	mu       sync.Mutex
	counters []recorded
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, recorded{name, delta, labels})
}
func (f *fakeBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (f *fakeBackend) Flush() error                                      { return nil }

func (f *fakeBackend) sum(name string, match metrics.Labels) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
next:
	for _, c := range f.counters {
		if c.name != name {
			continue
		}
		for k, v := range match {
			if c.labels[k] != v {
				continue next
			}
		}
		total += c.value
	}
	return total
}

const (
	day1 = `[
  {"id": "c0", "ndc": "d0", "npi": "p0", "quantity": 10, "price": 100, "timestamp": "2024-01-01T00:00:00"},
  {"id": "c1", "ndc": "d0", "npi": "p1", "quantity": 10, "price": 50, "timestamp": "2024-01-01T00:00:00"},
  {"id": "c2", "ndc": "d0", "npi": "p2", "quantity": 20, "price": 300, "timestamp": "2024-01-01T00:00:00"},
  {"id": "c3", "ndc": "d0", "npi": "p9", "quantity": 1, "price": 1, "timestamp": "2024-01-01T00:00:00"}
]`
	day2 = `[
  {"id": "c4", "ndc": "d1", "npi": "p0", "quantity": 5, "price": 25, "timestamp": "2024-01-02T00:00:00"},
  {"id": "c5", "ndc": "d0", "npi": "p1", "quantity": 10, "price": 70, "timestamp": "2024-01-02T00:00:00"}
]`
	day3 = `[
  {"id": "c6", "ndc": "d1", "npi": "p1", "quantity": 5, "price": 20, "timestamp": "2024-01-03T00:00:00"}
]`
	pharmaciesCSV = "chain,npi\nhealth,p0\nsaint,p1\ndoctor,p2\n"
	revertsJSON   = `[
  {"id": "r0", "claim_id": "c0", "timestamp": "2024-01-02T00:00:00"},
  {"id": "r1", "claim_id": "c0", "timestamp": "2024-01-03T00:00:00"}
]`
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func fixture(t *testing.T) config.Pipeline {
	t.Helper()
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.Job = "test"
	cfg.Sources.Claims.Path = filepath.Join(root, "claims")
	cfg.Sources.Pharmacies.Path = filepath.Join(root, "pharmacies")
	cfg.Sources.Reverts.Path = filepath.Join(root, "reverts")
	cfg.Staging.Dir = filepath.Join(root, "staging")
	cfg.Results.Dir = filepath.Join(root, "results")

	writeFile(t, cfg.Sources.Claims.Path, "day1.json", day1)
	writeFile(t, cfg.Sources.Claims.Path, "day2.json", day2)
	writeFile(t, cfg.Sources.Pharmacies.Path, "pharmacies.csv", pharmaciesCSV)
	writeFile(t, cfg.Sources.Reverts.Path, "reverts.json", revertsJSON)
	return cfg
}

func readJSON[T any](t *testing.T, dir, name string) []T {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name+".json"))
	require.NoError(t, err)
	var out []T
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func installMetrics(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	metrics.SetBackend(fb)
	t.Cleanup(func() { metrics.SetBackend(&fakeBackend{}) })
	return fb
}

func TestRun_EndToEnd(t *testing.T) {
	fb := installMetrics(t)
	cfg := fixture(t)

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 5, sum.Claims)
	assert.Equal(t, 3, sum.Pharmacies)
	assert.Equal(t, 1, sum.Reverts, "reverts are reduced to one per claim")
	assert.Equal(t, 5, sum.StagingRows)
	assert.Equal(t, 4, sum.Metrics)
	assert.Equal(t, 2, sum.TopChains)
	assert.Equal(t, 2, sum.Quantities)
	assert.Equal(t, staging.SyncStats{Processed: 2, Rows: 5, Filtered: 1}, sum.Staging)

	m := readJSON[schema.MetricsRow](t, cfg.Results.Dir, "metrics")
	assert.Equal(t, []schema.MetricsRow{
		{NDC: "d0", NPI: "p0", Reverted: 1, Fills: 1, AvgPrice: 10, TotalPrice: 100},
		{NDC: "d0", NPI: "p1", Fills: 2, AvgPrice: 6, TotalPrice: 120},
		{NDC: "d0", NPI: "p2", Fills: 1, AvgPrice: 15, TotalPrice: 300},
		{NDC: "d1", NPI: "p0", Fills: 1, AvgPrice: 5, TotalPrice: 25},
	}, m)

	chains := readJSON[schema.TopChainsRow](t, cfg.Results.Dir, "top_chains")
	assert.Equal(t, []schema.TopChainsRow{
		{NDC: "d0", Chain: []schema.ChainPrice{{Name: "health", AvgPrice: 10}, {Name: "saint", AvgPrice: 6}}},
		{NDC: "d1", Chain: []schema.ChainPrice{{Name: "health", AvgPrice: 5}}},
	}, chains)

	qty := readJSON[schema.QuantityRow](t, cfg.Results.Dir, "most_prescribed_quantity")
	assert.Equal(t, []schema.QuantityRow{
		{NDC: "d0", MostPrescribedQuantity: []float64{10, 20}},
		{NDC: "d1", MostPrescribedQuantity: []float64{5}},
	}, qty)

	for _, step := range []string{StepIngest, StepStage, StepTransform, StepMaterialize} {
		assert.Equal(t, 1.0, fb.sum(metrics.StepTotal, metrics.Labels{"step": step, "status": "success"}), step)
	}
	assert.Equal(t, 2.0, fb.sum(metrics.ArtifactsTotal, metrics.Labels{"action": "written"}))
	assert.Equal(t, 5.0, fb.sum(metrics.RowsTotal, metrics.Labels{"kind": "claims", "job": "test"}))
	assert.Equal(t, 1.0, fb.sum(metrics.RowsTotal, metrics.Labels{"kind": "filtered"}))
}

func TestRun_RevertFanOutWithoutDedup(t *testing.T) {
	installMetrics(t)
	cfg := fixture(t)
	cfg.Transform.DedupReverts = false

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Reverts)
	assert.Equal(t, 6, sum.StagingRows)

	m := readJSON[schema.MetricsRow](t, cfg.Results.Dir, "metrics")
	assert.Equal(t, schema.MetricsRow{NDC: "d0", NPI: "p0", Reverted: 2, Fills: 2, AvgPrice: 10, TotalPrice: 200}, m[0])
}

func TestRun_IncrementalReusesArtifacts(t *testing.T) {
	installMetrics(t)
	cfg := fixture(t)
	cfg.Staging.Incremental = true

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	writeFile(t, cfg.Sources.Claims.Path, "day3.json", day3)
	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Staging.Processed)
	assert.Equal(t, 2, sum.Staging.Skipped)
	assert.Equal(t, 6, sum.Claims)

	qty := readJSON[schema.QuantityRow](t, cfg.Results.Dir, "most_prescribed_quantity")
	require.Len(t, qty, 2)
	assert.Equal(t, []float64{5}, qty[1].MostPrescribedQuantity)
}

func TestRun_ParquetResults(t *testing.T) {
	installMetrics(t)
	cfg := fixture(t)
	cfg.Results.Format = "parquet"

	_, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	for _, name := range []string{"metrics", "top_chains", "most_prescribed_quantity"} {
		assert.FileExists(t, filepath.Join(cfg.Results.Dir, name+".parquet"))
	}
}

func TestRun_Failures(t *testing.T) {
	fb := installMetrics(t)

	t.Run("missing pharmacies", func(t *testing.T) {
		cfg := fixture(t)
		require.NoError(t, os.RemoveAll(cfg.Sources.Pharmacies.Path))
		_, err := Run(context.Background(), cfg)
		require.Error(t, err)
		assert.True(t, etlerr.IsNotFound(err), "err = %v", err)
		assert.NoDirExists(t, cfg.Results.Dir)
	})

	t.Run("missing claims", func(t *testing.T) {
		cfg := fixture(t)
		require.NoError(t, os.RemoveAll(cfg.Sources.Claims.Path))
		_, err := Run(context.Background(), cfg)
		assert.True(t, etlerr.IsNotFound(err), "err = %v", err)
		assert.ErrorContains(t, err, "stage:")
	})

	t.Run("undecodable claims", func(t *testing.T) {
		cfg := fixture(t)
		writeFile(t, cfg.Sources.Claims.Path, "day4.json", "{not json")
		_, err := Run(context.Background(), cfg)
		assert.True(t, etlerr.IsFormat(err), "err = %v", err)
	})

	t.Run("unknown results format", func(t *testing.T) {
		cfg := fixture(t)
		cfg.Results.Format = "xml"
		_, err := Run(context.Background(), cfg)
		assert.ErrorContains(t, err, "materialize:")
	})

	assert.Equal(t, 1.0, fb.sum(metrics.StepTotal, metrics.Labels{"step": StepIngest, "status": "failure"}))
	assert.Equal(t, 2.0, fb.sum(metrics.StepTotal, metrics.Labels{"step": StepStage, "status": "failure"}))
	assert.Equal(t, 1.0, fb.sum(metrics.StepTotal, metrics.Labels{"step": StepMaterialize, "status": "failure"}))
}

func TestRun_Canceled(t *testing.T) {
	installMetrics(t)
	cfg := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}
