// Package file implements local filesystem sources: single files and the
// source folders that hold them.
package file

import (
	"context"
	"io"
	"os"

	"rxclaims/internal/etlerr"
)

// Local is a filesystem data source that opens one file from local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// A context that is already done short-circuits without touching the
// filesystem. Filesystem errors are returned as *etlerr.IOError, which still
// unwraps to the os error (errors.Is(err, os.ErrNotExist) holds).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, etlerr.IO("open", l.path, err)
	}
	return f, nil
}
