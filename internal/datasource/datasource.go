// Package datasource abstracts where raw source bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens one physical input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
