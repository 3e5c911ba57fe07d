// Package ddl is a small dialect-neutral model of result tables.
//
// Backends render a TableDef into their own CREATE TABLE statement through a
// Dialect, which supplies identifier quoting and the SQL type for each
// logical column type.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnType is a logical column type.
type ColumnType string

const (
	Text      ColumnType = "text"
	Float     ColumnType = "float"
	Integer   ColumnType = "integer"
	Timestamp ColumnType = "timestamp"
)

// ColumnDef describes one column. Name is unquoted.
type ColumnDef struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	PrimaryKey bool
}

// TableDef is a table name, possibly schema-qualified ("dbo.metrics"), and
// its ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// WithFQN returns a copy of t named fqn.
func (t TableDef) WithFQN(fqn string) TableDef {
	t.FQN = fqn
	return t
}

// Dialect renders identifiers and types for one SQL backend.
type Dialect struct {
	Name    string
	Quote   func(ident string) string
	MapType func(ColumnType) string
}

// QuoteFQN quotes every non-empty segment of a dotted name.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, d.Quote(p))
	}
	return strings.Join(out, ".")
}

// ColumnClauses renders the column definitions of t, followed by a PRIMARY
// KEY constraint when any column is part of the key. Primary key columns are
// always NOT NULL.
func (d Dialect) ColumnClauses(t TableDef) ([]string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return nil, fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := d.MapType(c.Type)
		if typ == "" {
			return nil, fmt.Errorf("%s ddl: column %s has unknown type %q", d.Name, name, c.Type)
		}
		clause := d.Quote(name) + " " + typ
		if !c.Nullable || c.PrimaryKey {
			clause += " NOT NULL"
		}
		cols = append(cols, clause)
		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols, nil
}
