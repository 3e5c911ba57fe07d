// Package pipeline runs one end-to-end claims analytics batch: ingest the
// reference data, stage claims, compute the results and materialize them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rxclaims/internal/config"
	"rxclaims/internal/logging"
	"rxclaims/internal/metrics"
	"rxclaims/internal/reader"
	"rxclaims/internal/results"
	"rxclaims/internal/schema"
	"rxclaims/internal/staging"
	"rxclaims/internal/transform"
	"rxclaims/internal/transformer"
	"rxclaims/internal/transformer/builtin"
)

// Step names reported to metrics.
const (
	StepIngest      = "ingest"
	StepStage       = "stage"
	StepTransform   = "transform"
	StepMaterialize = "materialize"
)

// Summary describes a finished run.
type Summary struct {
	RunID       string
	Claims      int
	Pharmacies  int
	Reverts     int
	StagingRows int
	Metrics     int
	TopChains   int
	Quantities  int
	Staging     staging.SyncStats
}

// runner carries the per-run state shared by the steps.
type runner struct {
	cfg config.Pipeline
	log *zap.Logger
}

// Run executes one pipeline run with cfg. Any step failure aborts the run;
// results already materialized before the failure are left in place.
func Run(ctx context.Context, cfg config.Pipeline) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	r := &runner{cfg: cfg, log: logging.With(zap.String("run_id", sum.RunID), zap.String("job", cfg.Job))}

	start := time.Now()
	r.log.Info("pipeline: run started",
		zap.String("claims", cfg.Sources.Claims.Path),
		zap.String("staging", cfg.Staging.Dir),
		zap.Bool("incremental", cfg.Staging.Incremental),
		zap.String("results", cfg.Results.Dir),
	)

	err := r.run(ctx, sum)
	if err != nil {
		r.log.Error("pipeline: run failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}
	r.log.Info("pipeline: run finished",
		zap.Int("claims", sum.Claims),
		zap.Int("staging_rows", sum.StagingRows),
		zap.Int("metrics", sum.Metrics),
		zap.Int("top_chains", sum.TopChains),
		zap.Int("quantities", sum.Quantities),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, nil
}

func (r *runner) run(ctx context.Context, sum *Summary) error {
	var (
		pharmacies []schema.Pharmacy
		reverts    []schema.Revert
	)
	err := r.step(StepIngest, func() error {
		var err error
		pharmacies, reverts, err = r.ingest(ctx)
		return err
	})
	if err != nil {
		return err
	}
	sum.Pharmacies, sum.Reverts = len(pharmacies), len(reverts)

	var claims []schema.Claim
	err = r.step(StepStage, func() error {
		var err error
		claims, sum.Staging, err = r.stage(ctx, pharmacies)
		return err
	})
	if err != nil {
		return err
	}
	sum.Claims = len(claims)
	r.rows("claims", len(claims))

	var res transform.Results
	err = r.step(StepTransform, func() error {
		res = transform.Run(claims, pharmacies, reverts, r.transformOptions())
		return nil
	})
	if err != nil {
		return err
	}
	sum.StagingRows = res.StagingRows
	sum.Metrics = len(res.Metrics)
	sum.TopChains = len(res.TopChains)
	sum.Quantities = len(res.MostPrescribedQuantity)
	r.rows("staging", res.StagingRows)

	return r.step(StepMaterialize, func() error { return r.materialize(ctx, res) })
}

// step times fn and reports it to metrics.
func (r *runner) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(r.cfg.Job, name, err, d)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	r.log.Debug("pipeline: step done", zap.String("step", name), zap.Duration("elapsed", d))
	return nil
}

func (r *runner) rows(kind string, n int) {
	metrics.RecordRow(r.cfg.Job, kind, int64(n))
}

// ingest loads the pharmacy directory and the reverts concurrently.
func (r *runner) ingest(ctx context.Context) ([]schema.Pharmacy, []schema.Revert, error) {
	var (
		pharmacies []schema.Pharmacy
		reverts    []schema.Revert
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, st, err := reader.Pharmacies(gctx, r.cfg.Sources.Pharmacies)
		if err != nil {
			return fmt.Errorf("pharmacies: %w", err)
		}
		r.logIngest("pharmacies", st)
		pharmacies = ps
		return nil
	})
	g.Go(func() error {
		var extra []transformer.Transformer
		if r.cfg.Transform.DedupReverts {
			extra = append(extra, builtin.DeDup{Keys: []string{"claim_id"}})
		}
		rs, st, err := reader.Reverts(gctx, r.cfg.Sources.Reverts, extra...)
		if err != nil {
			return fmt.Errorf("reverts: %w", err)
		}
		r.logIngest("reverts", st)
		reverts = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return pharmacies, reverts, nil
}

func (r *runner) logIngest(source string, st reader.Stats) {
	r.log.Info("pipeline: source ingested",
		zap.String("source", source),
		zap.Int("files", st.Files),
		zap.Int("rows", st.Rows),
		zap.Int("dropped", st.Dropped),
	)
	r.rows(source, st.Rows)
	r.rows("dropped", st.Dropped+st.Malformed)
}

// stage syncs the claims cache and reads back every staged claim.
func (r *runner) stage(ctx context.Context, pharmacies []schema.Pharmacy) ([]schema.Claim, staging.SyncStats, error) {
	cache := staging.New(r.cfg.Staging.Dir, r.cfg.Staging.Workers)
	snap, st, err := cache.Sync(ctx, staging.SyncRequest{
		Source:      r.cfg.Sources.Claims,
		Pharmacies:  pharmacies,
		Incremental: r.cfg.Staging.Incremental,
	})
	if err != nil {
		return nil, st, err
	}

	metrics.RecordArtifacts(r.cfg.Job, "written", st.Processed)
	metrics.RecordArtifacts(r.cfg.Job, "skipped", st.Skipped)
	metrics.RecordArtifacts(r.cfg.Job, "removed", st.Removed)
	r.rows("filtered", st.Filtered)
	r.rows("dropped", st.Dropped)

	claims, err := snap.Claims(ctx)
	if err != nil {
		return nil, st, err
	}
	return claims, st, nil
}

func (r *runner) transformOptions() transform.Options {
	t := r.cfg.Transform
	return transform.Options{
		TopChains:   t.TopChains,
		TopQuantity: t.TopQuantity,
		Metrics:     transform.MetricsOptions{Round: t.Round, Precision: int32(t.Precision)},
	}
}

func (r *runner) materialize(ctx context.Context, res transform.Results) (err error) {
	sink, err := results.NewSink(r.cfg.Results)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := results.Materialize(ctx, sink, res); err != nil {
		return err
	}
	r.rows(results.Metrics, len(res.Metrics))
	r.rows(results.TopChains, len(res.TopChains))
	r.rows(results.MostPrescribedQuantity, len(res.MostPrescribedQuantity))
	r.log.Info("pipeline: results written", zap.String("dir", r.cfg.Results.Dir), zap.String("format", r.cfg.Results.Format))
	return nil
}
