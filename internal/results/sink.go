// Package results materializes the analytics results. Each result is written
// under its own name to every configured sink: files in a results directory
// and, optionally, tables in a SQL database.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rxclaims/internal/config"
	"rxclaims/internal/schema"
	"rxclaims/internal/transform"
)

// Result names, in materialization order.
const (
	Metrics                = "metrics"
	TopChains              = "top_chains"
	MostPrescribedQuantity = "most_prescribed_quantity"
)

// Names lists the results in the order Materialize writes them.
var Names = []string{Metrics, TopChains, MostPrescribedQuantity}

// Sink stores a named result. rows is one of []schema.MetricsRow,
// []schema.TopChainsRow or []schema.QuantityRow.
type Sink interface {
	Write(ctx context.Context, name string, rows any) error
	Close() error
}

// Materialize writes the three results in order. The first failure stops
// the run; results written before it are left in place.
func Materialize(ctx context.Context, sink Sink, res transform.Results) error {
	items := []struct {
		name string
		rows any
	}{
		{Metrics, nonNil(res.Metrics)},
		{TopChains, nonNil(res.TopChains)},
		{MostPrescribedQuantity, nonNil(res.MostPrescribedQuantity)},
	}
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Write(ctx, it.name, it.rows); err != nil {
			return fmt.Errorf("write %s: %w", it.name, err)
		}
	}
	return nil
}

// nonNil makes empty results serialize as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

// MultiSink writes each result to every sink in order.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, name string, rows any) error {
	for _, s := range m {
		if err := s.Write(ctx, name, rows); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// NewSink builds the sinks configured in cfg: a file sink for cfg.Format and,
// when cfg.Storage.Kind is set, a database sink behind it.
func NewSink(cfg config.Results) (Sink, error) {
	var file Sink
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		file = &JSONSink{Dir: cfg.Dir}
	case "parquet":
		file = &ParquetSink{Dir: cfg.Dir}
	default:
		return nil, fmt.Errorf("results: unsupported format %q", cfg.Format)
	}
	if cfg.Storage.Kind == "" {
		return file, nil
	}
	return MultiSink{file, NewDBSink(cfg.Storage)}, nil
}

// rowCount reports the length of a result slice.
func rowCount(rows any) int {
	switch r := rows.(type) {
	case []schema.MetricsRow:
		return len(r)
	case []schema.TopChainsRow:
		return len(r)
	case []schema.QuantityRow:
		return len(r)
	}
	return 0
}
