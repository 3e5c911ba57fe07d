// Package staging implements the incremental claims cache.
//
// Every claims source file owns exactly one artifact in the staging
// directory, named after the file's base name with a .parquet extension. An
// artifact holds the claims of its source file whose npi is in the pharmacy
// directory. In incremental mode an existing artifact marks its source file
// as processed; source files are treated as immutable once named, so the
// content of an existing artifact is never re-validated. Full mode deletes
// every artifact and rebuilds them all.
//
// The staging directory is not locked. Concurrent runs against the same
// directory are unsupported.
package staging

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"rxclaims/internal/config"
	"rxclaims/internal/datasource/file"
	"rxclaims/internal/etlerr"
	"rxclaims/internal/logging"
	"rxclaims/internal/parser"
	"rxclaims/internal/reader"
	"rxclaims/internal/schema"
)

// Cache manages the artifacts of one staging directory.
type Cache struct {
	dir     string
	workers int
}

// New returns a Cache rooted at dir that stages up to workers files at once.
func New(dir string, workers int) *Cache {
	if workers < 1 {
		workers = 1
	}
	return &Cache{dir: dir, workers: workers}
}

// Dir returns the staging directory.
func (c *Cache) Dir() string { return c.dir }

// ArtifactName returns the artifact name owned by a source file.
func ArtifactName(source string) string {
	return file.BaseName(source) + ArtifactExt
}

// SyncRequest describes one staging pass.
type SyncRequest struct {
	Source      config.Source
	Pharmacies  []schema.Pharmacy
	Incremental bool
}

// SyncStats summarizes a staging pass.
type SyncStats struct {
	Processed int // source files (re)staged
	Skipped   int // source files with an existing artifact
	Removed   int // artifacts deleted in full mode
	Rows      int // claims written to new artifacts
	Filtered  int // claims dropped for an unknown npi
	Dropped   int // claims dropped by the reader
}

// Sync brings the staging directory in line with the source folder and
// returns a snapshot of every artifact present afterwards.
//
// A missing source folder yields *etlerr.NotFoundError. Failing to create,
// delete or write an artifact yields *etlerr.IOError and aborts the pass;
// artifacts written before the failure stay in place and are picked up by a
// later incremental run.
func (c *Cache) Sync(ctx context.Context, req SyncRequest) (*Snapshot, SyncStats, error) {
	var st SyncStats
	log := logging.With(zap.String("staging_dir", c.dir), zap.Bool("incremental", req.Incremental))

	if _, err := parser.ForFormat(req.Source.Format, req.Source.Options); err != nil {
		return nil, st, err
	}
	listing, err := file.ListSource(req.Source.Path, req.Source.Format)
	if err != nil {
		return nil, st, err
	}
	for _, name := range listing.Skipped {
		log.Warn("staging: skipping file with mismatched extension",
			zap.String("file", name), zap.String("format", req.Source.Format))
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, st, etlerr.IO("mkdir", c.dir, err)
	}

	existing, err := c.artifacts()
	if err != nil {
		return nil, st, err
	}
	if !req.Incremental {
		for _, name := range existing {
			p := filepath.Join(c.dir, name)
			if err := os.Remove(p); err != nil {
				return nil, st, etlerr.IO("remove", p, err)
			}
			st.Removed++
		}
		existing = nil
	}

	present := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		present[name] = struct{}{}
	}
	// Files are sorted, so the last path seen for a name is the later file.
	owners := make(map[string]string, len(listing.Files))
	var names []string
	for _, path := range listing.Files {
		name := ArtifactName(path)
		if prev, dup := owners[name]; dup {
			log.Warn("staging: source files share an artifact name; later file wins",
				zap.String("artifact", name), zap.String("first", prev), zap.String("second", path))
			st.Skipped++
		} else {
			names = append(names, name)
		}
		owners[name] = path
	}
	var todo []string
	for _, name := range names {
		if _, ok := present[name]; ok {
			st.Skipped++
			continue
		}
		todo = append(todo, owners[name])
	}

	npis := pharmacySet(req.Pharmacies)
	log.Debug("staging: plan",
		zap.Int("sources", len(listing.Files)),
		zap.Int("to_process", len(todo)),
		zap.Int("removed", st.Removed),
		zap.String("pharmacy_set", fingerprint(npis)),
	)

	if err := c.process(ctx, todo, req.Source, npis, &st); err != nil {
		return nil, st, err
	}

	artifacts, err := c.artifacts()
	if err != nil {
		return nil, st, err
	}
	log.Info("staging: synced",
		zap.Int("processed", st.Processed),
		zap.Int("skipped", st.Skipped),
		zap.Int("artifacts", len(artifacts)),
		zap.Int("rows", st.Rows),
		zap.Int("filtered", st.Filtered),
	)
	return &Snapshot{dir: c.dir, artifacts: artifacts}, st, nil
}

// process stages every path on a bounded worker pool. The first error
// cancels the remaining work.
func (c *Cache) process(ctx context.Context, paths []string, src config.Source, npis map[string]struct{}, st *SyncStats) error {
	if len(paths) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := pond.NewPool(c.workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	var mu sync.Mutex
	group := pool.NewGroup()
	for _, path := range paths {
		group.SubmitErr(func() error {
			claims, rst, err := reader.ClaimsFile(ctx, path, src)
			if err != nil {
				cancel()
				return err
			}
			kept := claims[:0]
			for _, cl := range claims {
				if _, ok := npis[cl.NPI]; ok {
					kept = append(kept, cl)
				}
			}
			if err := writeArtifact(c.dir, ArtifactName(path), kept); err != nil {
				cancel()
				return err
			}

			mu.Lock()
			st.Processed++
			st.Rows += len(kept)
			st.Filtered += len(claims) - len(kept)
			st.Dropped += rst.Dropped
			mu.Unlock()

			logging.Debug("staging: artifact written",
				zap.String("source", path), zap.String("artifact", ArtifactName(path)), zap.Int("rows", len(kept)))
			return nil
		})
	}
	return group.Wait()
}

// artifacts lists artifact names in the staging directory, sorted.
func (c *Cache) artifacts() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, etlerr.IO("list", c.dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ArtifactExt {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func pharmacySet(ps []schema.Pharmacy) map[string]struct{} {
	set := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		set[p.NPI] = struct{}{}
	}
	return set
}

// fingerprint identifies a pharmacy npi set in logs, so runs staged against
// different directories can be told apart.
func fingerprint(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := xxh3.HashString(strings.Join(keys, "\x1f"))
	var b [8]byte
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}
