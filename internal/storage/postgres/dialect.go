package postgres

import (
	"fmt"
	"strings"

	"rxclaims/internal/ddl"
)

var dialect = ddl.Dialect{
	Name:  "postgres",
	Quote: quoteIdent,
	MapType: func(t ddl.ColumnType) string {
		switch t {
		case ddl.Text:
			return "TEXT"
		case ddl.Float:
			return "DOUBLE PRECISION"
		case ddl.Integer:
			return "BIGINT"
		case ddl.Timestamp:
			return "TIMESTAMPTZ"
		}
		return ""
	},
}

// quoteIdent double-quotes one identifier segment, escaping embedded quotes.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// Dialect implements storage.Dialect for PostgreSQL.
type Dialect struct{}

func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := dialect.ColumnClauses(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		dialect.QuoteFQN(t.FQN), strings.Join(cols, ",\n  ")), nil
}

func (Dialect) DeleteAllSQL(fqn string) string {
	return "TRUNCATE TABLE " + dialect.QuoteFQN(fqn)
}
