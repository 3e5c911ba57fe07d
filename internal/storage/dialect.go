package storage

import (
	"context"
	"fmt"
	"sync"

	"rxclaims/internal/ddl"
)

// Dialect renders the statements a backend needs to manage result tables.
type Dialect interface {
	// CreateTableSQL returns a statement that creates t unless it exists.
	CreateTableSQL(t ddl.TableDef) (string, error)
	// DeleteAllSQL returns a statement that empties the table.
	DeleteAllSQL(fqn string) string
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// RegisterDialect installs (or replaces) the dialect for kind.
func RegisterDialect(kind string, d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[kind]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable creates t through repo if it does not exist yet.
func EnsureTable(ctx context.Context, kind string, repo Repository, t ddl.TableDef) error {
	d, err := DialectFor(kind)
	if err != nil {
		return err
	}
	stmt, err := d.CreateTableSQL(t)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", t.FQN, err)
	}
	return nil
}

// ResetTable deletes every row of fqn. Results are recomputed in full on each
// run, so a table is emptied before it is reloaded.
func ResetTable(ctx context.Context, kind string, repo Repository, fqn string) error {
	d, err := DialectFor(kind)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, d.DeleteAllSQL(fqn)); err != nil {
		return fmt.Errorf("reset table %s: %w", fqn, err)
	}
	return nil
}
