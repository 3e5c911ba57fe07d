package mssql

import (
	"fmt"
	"strings"

	"rxclaims/internal/ddl"
)

var dialect = ddl.Dialect{
	Name:  "mssql",
	Quote: msIdent,
	MapType: func(t ddl.ColumnType) string {
		switch t {
		case ddl.Text:
			// Key columns cannot be NVARCHAR(MAX).
			return "NVARCHAR(450)"
		case ddl.Float:
			return "FLOAT"
		case ddl.Integer:
			return "BIGINT"
		case ddl.Timestamp:
			return "DATETIME2"
		}
		return ""
	},
}

// Dialect implements storage.Dialect for SQL Server.
type Dialect struct{}

// CreateTableSQL guards CREATE TABLE with OBJECT_ID since T-SQL has no
// CREATE TABLE IF NOT EXISTS.
func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := dialect.ColumnClauses(t)
	if err != nil {
		return "", err
	}
	fqn := dialect.QuoteFQN(t.FQN)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND",
		strings.ReplaceAll(fqn, "'", "''"), fqn, strings.Join(cols, ",\n    "),
	), nil
}

func (Dialect) DeleteAllSQL(fqn string) string {
	return "DELETE FROM " + dialect.QuoteFQN(fqn)
}
