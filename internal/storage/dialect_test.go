package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"rxclaims/internal/ddl"
)

type fakeDialect struct{}

func (fakeDialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	if len(t.Columns) == 0 {
		return "", errors.New("no columns")
	}
	return "CREATE " + t.FQN, nil
}

func (fakeDialect) DeleteAllSQL(fqn string) string { return "DELETE " + fqn }

func TestEnsureAndResetTable(t *testing.T) {
	t.Parallel()

	RegisterDialect("fake-dialect", fakeDialect{})
	repo := &fakeRepo{}
	ctx := context.Background()
	def := ddl.TableDef{FQN: "rx_metrics", Columns: []ddl.ColumnDef{{Name: "ndc", Type: ddl.Text}}}

	if err := EnsureTable(ctx, "fake-dialect", repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if err := ResetTable(ctx, "fake-dialect", repo, "rx_metrics"); err != nil {
		t.Fatalf("ResetTable: %v", err)
	}
	if want := []string{"CREATE rx_metrics", "DELETE rx_metrics"}; !reflect.DeepEqual(repo.execs, want) {
		t.Fatalf("execs = %v; want %v", repo.execs, want)
	}

	if err := EnsureTable(ctx, "fake-dialect", repo, ddl.TableDef{FQN: "x"}); err == nil {
		t.Fatal("EnsureTable with no columns: want error")
	}
}

func TestDialectErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := DialectFor("nope"); err == nil || !strings.Contains(err.Error(), `"nope"`) {
		t.Fatalf("DialectFor(nope) err = %v", err)
	}
	if err := ResetTable(ctx, "nope", &fakeRepo{}, "t"); err == nil {
		t.Fatal("ResetTable with unknown kind: want error")
	}

	RegisterDialect("fake-failing", fakeDialect{})
	boom := errors.New("boom")
	err := EnsureTable(ctx, "fake-failing", &fakeRepo{execErr: boom},
		ddl.TableDef{FQN: "t", Columns: []ddl.ColumnDef{{Name: "a", Type: ddl.Text}}})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "create table t") {
		t.Fatalf("err = %v; want wrapped boom", err)
	}
}
