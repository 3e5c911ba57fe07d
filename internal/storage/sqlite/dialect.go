package sqlite

import (
	"fmt"
	"strings"

	"rxclaims/internal/ddl"
)

var dialect = ddl.Dialect{
	Name:  "sqlite",
	Quote: quoteIdent,
	MapType: func(t ddl.ColumnType) string {
		switch t {
		case ddl.Text:
			return "TEXT"
		case ddl.Float:
			return "REAL"
		case ddl.Integer:
			return "INTEGER"
		case ddl.Timestamp:
			// ISO-8601 text, the form SQLite's date functions understand.
			return "TEXT"
		}
		return ""
	},
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// Dialect implements storage.Dialect for SQLite.
type Dialect struct{}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func (Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	cols, err := dialect.ColumnClauses(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		dialect.QuoteFQN(t.FQN), strings.Join(cols, ",\n  ")), nil
}

// DeleteAllSQL renders an unqualified DELETE; SQLite has no TRUNCATE.
func (Dialect) DeleteAllSQL(fqn string) string {
	return "DELETE FROM " + dialect.QuoteFQN(fqn)
}
