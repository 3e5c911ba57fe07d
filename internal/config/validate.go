// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that the CLI surfaces before a run starts.

package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "sources.claims.format").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var knownFormats = map[string]struct{}{"json": {}, "csv": {}}

// ValidatePipeline performs static validation of p without mutating it.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be emitted without a job label",
		})
	}
	issues = append(issues, validateSource("sources.claims", p.Sources.Claims)...)
	issues = append(issues, validateSource("sources.pharmacies", p.Sources.Pharmacies)...)
	issues = append(issues, validateSource("sources.reverts", p.Sources.Reverts)...)
	issues = append(issues, validateStaging(p.Staging)...)
	issues = append(issues, validateTransform(p.Transform)...)
	issues = append(issues, validateResults(p.Results)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSource(path string, s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".path",
			Message:  "source folder must not be empty",
		})
	}
	if _, ok := knownFormats[s.Format]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".format",
			Message:  fmt.Sprintf("unsupported format %q; want json or csv", s.Format),
		})
	}
	if s.Format == "csv" {
		if c := s.Options.String("comma", ","); len([]rune(c)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".options.comma",
				Message:  "comma must be a single character",
			})
		}
	}
	return issues
}

func validateStaging(s Staging) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "staging.dir",
			Message:  "staging.dir must not be empty",
		})
	}
	if s.Workers < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "staging.workers",
			Message:  fmt.Sprintf("workers=%d; at least one worker is required", s.Workers),
		})
	}
	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue
	if t.TopChains < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.top_chains",
			Message:  "top_chains must be positive",
		})
	}
	if t.TopQuantity < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.top_quantity",
			Message:  "top_quantity must be positive",
		})
	}
	if t.Precision < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.precision",
			Message:  "precision must not be negative",
		})
	}
	if !t.Round && t.Precision != Defaults().Transform.Precision {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform.precision",
			Message:  "precision is set but rounding is disabled; it has no effect",
		})
	}
	if !t.DedupReverts {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform.dedup_reverts",
			Message:  "multiple reverts for one claim will inflate fills and total_price",
		})
	}
	return issues
}

func validateResults(r Results) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "results.dir",
			Message:  "results.dir must not be empty",
		})
	}
	switch r.Format {
	case "json", "parquet":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "results.format",
			Message:  fmt.Sprintf("unsupported results format %q; want json or parquet", r.Format),
		})
	}

	if r.Storage.Kind == "" {
		return issues
	}
	switch r.Storage.Kind {
	case "sqlite", "postgres", "mssql":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "results.storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", r.Storage.Kind),
		})
	}
	if strings.TrimSpace(r.Storage.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "results.storage.dsn",
			Message:  "results.storage.dsn must not be empty when a storage kind is set",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires an agent address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	return issues
}
