// Package config defines the configuration model for a claims pipeline run.
//
// A Pipeline is assembled from defaults, an optional config file (JSON or
// YAML), RXCLAIMS_* environment variables and CLI flags, in increasing order
// of precedence. The struct is passed explicitly into pipeline.Run; nothing
// in the pipeline reads process-wide configuration.
//
// Example (trimmed):
//
//	{
//	  "sources": {
//	    "claims":     { "path": "data/claims",     "format": "json" },
//	    "pharmacies": { "path": "data/pharmacies", "format": "csv", "options": { "comma": ";" } },
//	    "reverts":    { "path": "data/reverts",    "format": "json" }
//	  },
//	  "staging":   { "dir": "staging", "incremental": true },
//	  "transform": { "top_chains": 2, "top_quantity": 5 },
//	  "results":   { "dir": "results", "storage": { "kind": "sqlite", "dsn": "file:results.db" } }
//	}
package config

import (
	"encoding/json"

	"rxclaims/internal/logging"
)

// Pipeline is the full configuration of one run.
type Pipeline struct {
	// Job labels metrics emitted by the run.
	Job string `mapstructure:"job" json:"job"`

	Sources   Sources        `mapstructure:"sources" json:"sources"`
	Staging   Staging        `mapstructure:"staging" json:"staging"`
	Transform Transform      `mapstructure:"transform" json:"transform"`
	Results   Results        `mapstructure:"results" json:"results"`
	Metrics   Metrics        `mapstructure:"metrics" json:"metrics"`
	Log       logging.Config `mapstructure:"log" json:"log"`
}

// Sources locates the three input folders.
type Sources struct {
	Claims     Source `mapstructure:"claims" json:"claims"`
	Pharmacies Source `mapstructure:"pharmacies" json:"pharmacies"`
	Reverts    Source `mapstructure:"reverts" json:"reverts"`
}

// Source is one input folder whose files all share a format.
type Source struct {
	// Path is the folder holding the source files.
	Path string `mapstructure:"path" json:"path"`

	// Format is the parser tag: "json" or "csv".
	Format string `mapstructure:"format" json:"format"`

	// Options is passed to the parser, e.g. comma (csv) or allow_arrays (json).
	Options Options `mapstructure:"options" json:"options"`
}

// Staging configures the incremental claims cache.
type Staging struct {
	Dir string `mapstructure:"dir" json:"dir"`

	// Incremental processes only claim files without an artifact. When false
	// every artifact is deleted and every file is reprocessed.
	Incremental bool `mapstructure:"incremental" json:"incremental"`

	// Workers bounds how many claim files are staged concurrently.
	Workers int `mapstructure:"workers" json:"workers"`
}

// Transform holds the knobs of the join/aggregate/rank stages.
type Transform struct {
	TopChains   int  `mapstructure:"top_chains" json:"top_chains"`
	TopQuantity int  `mapstructure:"top_quantity" json:"top_quantity"`
	Round       bool `mapstructure:"round" json:"round"`
	Precision   int  `mapstructure:"precision" json:"precision"`

	// DedupReverts keeps only the first revert per claim before the join.
	DedupReverts bool `mapstructure:"dedup_reverts" json:"dedup_reverts"`
}

// Results configures where result tables are materialized.
type Results struct {
	Dir string `mapstructure:"dir" json:"dir"`

	// Format is the file encoding: "json" or "parquet".
	Format string `mapstructure:"format" json:"format"`

	// Storage optionally mirrors the results into a database.
	Storage Storage `mapstructure:"storage" json:"storage"`
}

// Storage selects a database sink. An empty Kind disables it.
type Storage struct {
	// Kind is one of "sqlite", "postgres", "mssql".
	Kind string `mapstructure:"kind" json:"kind"`

	DSN string `mapstructure:"dsn" json:"dsn"`

	// TablePrefix is prepended to each result name to form the table name.
	TablePrefix string `mapstructure:"table_prefix" json:"table_prefix"`
}

// Metrics selects the run metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `mapstructure:"backend" json:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr" json:"datadog_addr"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Pipeline {
	return Pipeline{
		Job: "rxclaims",
		Sources: Sources{
			Claims:     Source{Path: "data/claims", Format: "json", Options: Options{}},
			Pharmacies: Source{Path: "data/pharmacies", Format: "csv", Options: Options{}},
			Reverts:    Source{Path: "data/reverts", Format: "json", Options: Options{}},
		},
		Staging: Staging{Dir: "staging", Workers: 4},
		Transform: Transform{
			TopChains:    2,
			TopQuantity:  5,
			Round:        true,
			Precision:    2,
			DedupReverts: true,
		},
		Results: Results{Dir: "results", Format: "json"},
		Metrics: Metrics{
			Backend:        "none",
			PushgatewayURL: "http://localhost:9091",
			DatadogAddr:    "127.0.0.1:8125",
		},
		Log: logging.DefaultConfig(),
	}
}

// Options is a small helper to fetch typed values from free-form parser
// option maps. It performs minimal coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def. Env-sourced values arrive as
// strings, so "true"/"false" are accepted too.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && len(s) > 0 {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the string-valued entries of an object value.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	switch m := o[key].(type) {
	case map[string]any:
		for k, vv := range m {
			if s, ok := vv.(string); ok {
				res[k] = s
			}
		}
	case map[string]string:
		for k, s := range m {
			res[k] = s
		}
	}
	return res
}

// UnmarshalJSON decodes a missing or null options object to an empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
