package results

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"rxclaims/internal/etlerr"
	"rxclaims/internal/logging"
	"rxclaims/internal/schema"
)

type metricsRecord struct {
	NDC        string  `parquet:"ndc"`
	NPI        string  `parquet:"npi"`
	Reverted   uint32  `parquet:"reverted"`
	Fills      uint32  `parquet:"fills"`
	AvgPrice   float64 `parquet:"avg_price"`
	TotalPrice float64 `parquet:"total_price"`
}

type chainRecord struct {
	Name     string  `parquet:"name"`
	AvgPrice float64 `parquet:"avg_price"`
}

type topChainsRecord struct {
	NDC   string        `parquet:"ndc"`
	Chain []chainRecord `parquet:"chain,list"`
}

type quantityRecord struct {
	NDC                    string    `parquet:"ndc"`
	MostPrescribedQuantity []float64 `parquet:"most_prescribed_quantity,list"`
}

// ParquetSink writes each result to Dir/<name>.parquet with list columns
// encoded as parquet LISTs.
type ParquetSink struct {
	Dir string
}

func (s *ParquetSink) Write(ctx context.Context, name string, rows any) error {
	path := filepath.Join(s.Dir, name+".parquet")

	var (
		buf bytes.Buffer
		err error
	)
	switch r := rows.(type) {
	case []schema.MetricsRow:
		out := make([]metricsRecord, len(r))
		for i, m := range r {
			out[i] = metricsRecord{m.NDC, m.NPI, m.Reverted, m.Fills, m.AvgPrice, m.TotalPrice}
		}
		err = encodeParquet(&buf, out)
	case []schema.TopChainsRow:
		out := make([]topChainsRecord, len(r))
		for i, t := range r {
			chains := make([]chainRecord, len(t.Chain))
			for j, c := range t.Chain {
				chains[j] = chainRecord{c.Name, c.AvgPrice}
			}
			out[i] = topChainsRecord{NDC: t.NDC, Chain: chains}
		}
		err = encodeParquet(&buf, out)
	case []schema.QuantityRow:
		out := make([]quantityRecord, len(r))
		for i, q := range r {
			out[i] = quantityRecord{q.NDC, q.MostPrescribedQuantity}
		}
		err = encodeParquet(&buf, out)
	default:
		return fmt.Errorf("results: parquet sink cannot encode %T", rows)
	}
	if err != nil {
		return etlerr.Format("parquet", path, err)
	}

	if err := writeFileAtomic(s.Dir, path, buf.Bytes()); err != nil {
		return err
	}
	logging.Debug("results: parquet written", zap.String("path", path), zap.Int("rows", rowCount(rows)))
	return nil
}

func (s *ParquetSink) Close() error { return nil }

func encodeParquet[T any](buf *bytes.Buffer, rows []T) error {
	w := parquet.NewGenericWriter[T](buf, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		return err
	}
	return w.Close()
}
