package results

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"rxclaims/internal/etlerr"
	"rxclaims/internal/logging"
)

// JSONSink writes each result to Dir/<name>.json as an indented array of
// objects. Files are replaced atomically.
type JSONSink struct {
	Dir string
}

func (s *JSONSink) Write(ctx context.Context, name string, rows any) error {
	path := filepath.Join(s.Dir, name+".json")
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		// NaN or Inf prices, e.g. from a zero quantity.
		return etlerr.Format("json", path, err)
	}
	if err := writeFileAtomic(s.Dir, path, append(b, '\n')); err != nil {
		return err
	}
	logging.Debug("results: json written", zap.String("path", path), zap.Int("rows", rowCount(rows)))
	return nil
}

func (s *JSONSink) Close() error { return nil }

// writeFileAtomic writes data to a hidden temp file in dir and renames it to
// path.
func writeFileAtomic(dir, path string, data []byte) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return etlerr.IO("mkdir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return etlerr.IO("create", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return etlerr.IO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return etlerr.IO("write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return etlerr.IO("rename", path, err)
	}
	return nil
}
