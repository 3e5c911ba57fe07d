package results

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"rxclaims/internal/config"
	"rxclaims/internal/ddl"
	"rxclaims/internal/logging"
	"rxclaims/internal/schema"
	"rxclaims/internal/storage"
)

// Tables holds the column layout of each result table. List columns are
// flattened into one row per list element, numbered by a 1-based position
// column in list order: chains by name, quantities ascending.
var Tables = map[string]ddl.TableDef{
	Metrics: {Columns: []ddl.ColumnDef{
		{Name: "ndc", Type: ddl.Text},
		{Name: "npi", Type: ddl.Text},
		{Name: "reverted", Type: ddl.Integer},
		{Name: "fills", Type: ddl.Integer},
		{Name: "avg_price", Type: ddl.Float, Nullable: true},
		{Name: "total_price", Type: ddl.Float, Nullable: true},
	}},
	TopChains: {Columns: []ddl.ColumnDef{
		{Name: "ndc", Type: ddl.Text},
		{Name: "position", Type: ddl.Integer},
		{Name: "name", Type: ddl.Text},
		{Name: "avg_price", Type: ddl.Float, Nullable: true},
	}},
	MostPrescribedQuantity: {Columns: []ddl.ColumnDef{
		{Name: "ndc", Type: ddl.Text},
		{Name: "position", Type: ddl.Integer},
		{Name: "quantity", Type: ddl.Float},
	}},
}

// DBSink loads each result into <TablePrefix><name>, creating the table when
// missing and replacing its previous content.
type DBSink struct {
	Kind        string
	DSN         string
	TablePrefix string
	BatchSize   int

	// NewBackOff paces connection retries; nil uses an exponential backoff
	// capped at 30s overall.
	NewBackOff func() backoff.BackOff
}

// NewDBSink returns a DBSink for cfg.
func NewDBSink(cfg config.Storage) *DBSink {
	return &DBSink{Kind: cfg.Kind, DSN: cfg.DSN, TablePrefix: cfg.TablePrefix, BatchSize: storage.DefaultBatchSize}
}

func (s *DBSink) Write(ctx context.Context, name string, rows any) error {
	def, ok := Tables[name]
	if !ok {
		return fmt.Errorf("results: no table layout for %q", name)
	}
	def = def.WithFQN(s.TablePrefix + name)

	flat, err := flatten(rows)
	if err != nil {
		return err
	}
	// Unknown kinds are a configuration error; fail before retrying.
	if _, err := storage.DialectFor(s.Kind); err != nil {
		return err
	}

	repo, err := s.connect(ctx, def)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := storage.EnsureTable(ctx, s.Kind, repo, def); err != nil {
		return err
	}
	if err := storage.ResetTable(ctx, s.Kind, repo, def.FQN); err != nil {
		return err
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = storage.DefaultBatchSize
	}
	n, err := storage.LoadBatches(ctx, def.ColumnNames(), flat, batch, repo.CopyFrom)
	if err != nil {
		return fmt.Errorf("load %s: %w", def.FQN, err)
	}
	logging.Info("results: table loaded", zap.String("kind", s.Kind), zap.String("table", def.FQN), zap.Int64("rows", n))
	return nil
}

func (s *DBSink) Close() error { return nil }

// connect opens a repository for def, retrying transient failures.
func (s *DBSink) connect(ctx context.Context, def ddl.TableDef) (storage.Repository, error) {
	var b backoff.BackOff
	if s.NewBackOff != nil {
		b = s.NewBackOff()
	} else {
		eb := backoff.NewExponentialBackOff()
		eb.MaxElapsedTime = 30 * time.Second
		b = eb
	}

	var repo storage.Repository
	op := func() error {
		r, err := storage.New(ctx, storage.Config{
			Kind:    s.Kind,
			DSN:     s.DSN,
			Table:   def.FQN,
			Columns: def.ColumnNames(),
		})
		if err != nil {
			return err
		}
		repo = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logging.Warn("results: database not ready, retrying",
			zap.String("kind", s.Kind), zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect %s: %w", s.Kind, err)
	}
	return repo, nil
}

// flatten converts a result slice into rows aligned to its table layout.
func flatten(rows any) ([][]any, error) {
	var out [][]any
	switch r := rows.(type) {
	case []schema.MetricsRow:
		out = make([][]any, 0, len(r))
		for _, m := range r {
			out = append(out, []any{m.NDC, m.NPI, int64(m.Reverted), int64(m.Fills), m.AvgPrice, m.TotalPrice})
		}
	case []schema.TopChainsRow:
		for _, t := range r {
			for i, c := range t.Chain {
				out = append(out, []any{t.NDC, int64(i + 1), c.Name, c.AvgPrice})
			}
		}
	case []schema.QuantityRow:
		for _, q := range r {
			for i, v := range q.MostPrescribedQuantity {
				out = append(out, []any{q.NDC, int64(i + 1), v})
			}
		}
	default:
		return nil, fmt.Errorf("results: database sink cannot flatten %T", rows)
	}
	return out, nil
}
