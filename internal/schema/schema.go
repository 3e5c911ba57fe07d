// Package schema holds the fixed source schemas and the entity types that
// flow through the pipeline.
package schema

// FieldType is the semantic type a source field is coerced to.
type FieldType string

const (
	String   FieldType = "string"
	Float    FieldType = "float"
	Datetime FieldType = "datetime"
)

// Field is one named, typed column of a source schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered field list a source file must satisfy.
type Schema struct {
	Name   string
	Fields []Field
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Types returns field name -> type.
func (s Schema) Types() map[string]FieldType {
	out := make(map[string]FieldType, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Type
	}
	return out
}

var (
	ClaimsSchema = Schema{
		Name: "claims",
		Fields: []Field{
			{Name: "id", Type: String},
			{Name: "ndc", Type: String},
			{Name: "npi", Type: String},
			{Name: "quantity", Type: Float},
			{Name: "price", Type: Float},
			{Name: "timestamp", Type: Datetime},
		},
	}

	PharmaciesSchema = Schema{
		Name: "pharmacies",
		Fields: []Field{
			{Name: "chain", Type: String},
			{Name: "npi", Type: String},
		},
	}

	RevertsSchema = Schema{
		Name: "reverts",
		Fields: []Field{
			{Name: "id", Type: String},
			{Name: "claim_id", Type: String},
			{Name: "timestamp", Type: Datetime},
		},
	}
)
