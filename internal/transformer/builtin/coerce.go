package builtin

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"rxclaims/pkg/records"
)

// DefaultLayouts are tried in order when coercing datetime fields. Values
// without a zone are read as UTC.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Coerce converts field values to their target type. A value that cannot be
// converted becomes nil, which turns an unparseable field into a missing one.
type Coerce struct {
	Types   map[string]string // field -> one of: string, float, datetime
	Layouts []string          // datetime layouts; DefaultLayouts when empty
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			switch typ {
			case "string":
				r[field] = toString(v)
			case "float":
				r[field] = toFloat(v)
			case "datetime":
				r[field] = toTime(v, layouts)
			}
		}
	}
	return in
}

func toString(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	}
	return nil
}

func toFloat(v any) any {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return nil
}

func toTime(v any, layouts []string) any {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, l := range layouts {
			if ts, err := time.Parse(l, t); err == nil {
				return ts
			}
		}
	}
	return nil
}
