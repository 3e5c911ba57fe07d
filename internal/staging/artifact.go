package staging

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"rxclaims/internal/etlerr"
	"rxclaims/internal/schema"
)

// ArtifactExt is the extension of staging artifacts.
const ArtifactExt = ".parquet"

// readBatch is how many rows are decoded per parquet read.
const readBatch = 1024

// artifactWriter writes claims to a parquet file.
type artifactWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[schema.Claim]
	count  int
}

func newArtifactWriter(f *os.File) *artifactWriter {
	return &artifactWriter{
		file: f,
		writer: parquet.NewGenericWriter[schema.Claim](f,
			parquet.Compression(&parquet.Snappy),
			parquet.CreatedBy("rxclaims", "1", ""),
		),
	}
}

func (w *artifactWriter) Write(rows []schema.Claim) error {
	n, err := w.writer.Write(rows)
	w.count += n
	return err
}

// Close flushes the last row group and closes the file.
func (w *artifactWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// writeArtifact persists rows as dir/name. The rows are written to a hidden
// temporary file first and renamed into place, so a crash never leaves a
// truncated artifact under its final name.
func writeArtifact(dir, name string, rows []schema.Claim) (err error) {
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return etlerr.IO("create", final, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	w := newArtifactWriter(tmp)
	if err := w.Write(rows); err != nil {
		w.Close()
		return etlerr.IO("write", final, err)
	}
	if err := w.Close(); err != nil {
		return etlerr.IO("write", final, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return etlerr.IO("rename", final, err)
	}
	return nil
}

// readArtifact streams the claims of one artifact to fn in batches.
func readArtifact(path string, fn func([]schema.Claim) error) error {
	f, err := os.Open(path)
	if err != nil {
		return etlerr.IO("open", path, err)
	}
	defer f.Close()

	r := parquet.NewGenericReader[schema.Claim](f)
	defer r.Close()

	buf := make([]schema.Claim, readBatch)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if ferr := fn(buf[:n]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return etlerr.IO("read", path, err)
		}
	}
}
