//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"rxclaims/internal/ddl"
	"rxclaims/internal/storage"
)

// testDSN reads MSSQL_TEST_DSN and skips when it is unset.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

func TestRepositoryIntegration(t *testing.T) {
	dsn := testDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	def := ddl.TableDef{
		FQN: "dbo.rx_integration_metrics",
		Columns: []ddl.ColumnDef{
			{Name: "ndc", Type: ddl.Text},
			{Name: "fills", Type: ddl.Integer},
			{Name: "avg_price", Type: ddl.Float, Nullable: true},
		},
	}

	repo, err := storage.New(ctx, storage.Config{Kind: "mssql", DSN: dsn, Table: def.FQN})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if err := storage.EnsureTable(ctx, "mssql", repo, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if err := storage.ResetTable(ctx, "mssql", repo, def.FQN); err != nil {
		t.Fatalf("ResetTable: %v", err)
	}

	rows := [][]any{{"d1", int64(2), 10.5}, {"d2", int64(1), nil}}
	n, err := repo.CopyFrom(ctx, def.ColumnNames(), rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("inserted = %d; want %d", n, len(rows))
	}
}
