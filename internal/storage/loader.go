package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rxclaims/internal/logging"
)

// DefaultBatchSize is the number of rows sent per CopyFrom call.
const DefaultBatchSize = 5000

// CopyFn is a bulk insert, usually Repository.CopyFrom.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into batches of batchSize and calls copyFn for
// each. It returns the total reported by copyFn and stops at the first error
// or cancellation; batches already sent stay loaded.
func LoadBatches(ctx context.Context, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			logging.Warn("loader: copy failed",
				zap.Int("batch", batches+1), zap.Int64("inserted", n), zap.Int64("total", total), zap.Error(err))
			return total, err
		}
		batches++
		logging.Debug("loader: batch copied",
			zap.Int("batch", batches),
			zap.Int64("inserted", n),
			zap.Int64("total", total),
			zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
		)
	}
	return total, nil
}
