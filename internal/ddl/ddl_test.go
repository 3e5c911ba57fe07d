package ddl

import (
	"reflect"
	"strings"
	"testing"
)

var testDialect = Dialect{
	Name:  "test",
	Quote: func(s string) string { return "<" + s + ">" },
	MapType: func(t ColumnType) string {
		switch t {
		case Text:
			return "TXT"
		case Float:
			return "DBL"
		}
		return ""
	},
}

func TestColumnClauses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		want        []string
		errContains string
	}{
		{
			name:        "empty FQN",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", Type: Text}}},
			errContains: "FQN must not be empty",
		},
		{
			name:        "no columns",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column",
		},
		{
			name:        "empty column name",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Type: Text}}},
			errContains: "column with empty name",
		},
		{
			name:        "unknown type",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "ts", Type: Timestamp}}},
			errContains: `unknown type "timestamp"`,
		},
		{
			name: "nullable and primary key",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "ndc", Type: Text, PrimaryKey: true, Nullable: true},
				{Name: "avg_price", Type: Float, Nullable: true},
				{Name: "chain", Type: Text},
			}},
			want: []string{"<ndc> TXT NOT NULL", "<avg_price> DBL", "<chain> TXT NOT NULL", "PRIMARY KEY (<ndc>)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := testDialect.ColumnClauses(tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err = %v; want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ColumnClauses: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("clauses = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestQuoteFQNAndColumnNames(t *testing.T) {
	if got := testDialect.QuoteFQN("dbo..metrics"); got != "<dbo>.<metrics>" {
		t.Fatalf("QuoteFQN = %q", got)
	}
	def := TableDef{FQN: "a", Columns: []ColumnDef{{Name: "x"}, {Name: "y"}}}
	if got := def.ColumnNames(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("ColumnNames = %v", got)
	}
	if renamed := def.WithFQN("b"); renamed.FQN != "b" || def.FQN != "a" {
		t.Fatalf("WithFQN mutated the receiver or failed: %q %q", renamed.FQN, def.FQN)
	}
}
