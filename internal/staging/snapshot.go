package staging

import (
	"context"
	"path/filepath"

	"rxclaims/internal/schema"
)

// Snapshot is the logical claims row-set: the union of the artifacts present
// after a sync. Claims are read lazily, artifact by artifact, in name order.
type Snapshot struct {
	dir       string
	artifacts []string
}

// Open returns a snapshot over the artifacts currently in dir without
// syncing.
func (c *Cache) Open() (*Snapshot, error) {
	names, err := c.artifacts()
	if err != nil {
		return nil, err
	}
	return &Snapshot{dir: c.dir, artifacts: names}, nil
}

// Artifacts returns the artifact names in read order.
func (s *Snapshot) Artifacts() []string {
	return append([]string(nil), s.artifacts...)
}

// Each calls fn for every claim. Iteration stops at the first error from fn,
// a read failure (*etlerr.IOError) or context cancellation.
func (s *Snapshot) Each(ctx context.Context, fn func(schema.Claim) error) error {
	for _, name := range s.artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := readArtifact(filepath.Join(s.dir, name), func(batch []schema.Claim) error {
			for _, c := range batch {
				if err := fn(c); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Claims collects every claim of the snapshot.
func (s *Snapshot) Claims(ctx context.Context) ([]schema.Claim, error) {
	var out []schema.Claim
	err := s.Each(ctx, func(c schema.Claim) error {
		out = append(out, c)
		return nil
	})
	return out, err
}
