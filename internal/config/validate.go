// This file adds a lightweight linter/validator for Batch values. It performs
// static checks over a decoded Batch and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users
	// but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Batch.
//
// Path is a dotted path into the config (e.g. "storage.kind"); Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateBatch performs static validation of a Batch without mutating it.
// Callers decide whether warnings are fatal.
func ValidateBatch(b Batch) []Issue {
	var issues []Issue

	if strings.TrimSpace(b.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	if strings.TrimSpace(b.Source.Dir) == "" && len(b.Source.Files) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.dir",
			Message:  "either source.dir or source.files must be set",
		})
	}

	if b.Parser.Comma != "" && utf8.RuneCountInString(b.Parser.Comma) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.comma",
			Message:  fmt.Sprintf("delimiter must be a single character, got %q", b.Parser.Comma),
		})
	}

	issues = append(issues, validateStorage(b.Storage)...)
	issues = append(issues, validateRuntime(b.Runtime)...)

	if strings.TrimSpace(b.RejectLog) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "reject_log",
			Message:  "reject_log is empty; rejected rows will not be written to an audit artifact",
		})
	}

	return issues
}

// validateStorage validates the storage selection.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	known := map[string]struct{}{
		"":         {}, // defaults to sqlite
		"sqlite":   {},
		"postgres": {},
		"mysql":    {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; expected sqlite, postgres, or mysql", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}

	return issues
}

// validateRuntime validates concurrency and timeout settings.
func validateRuntime(r Runtime) []Issue {
	var issues []Issue

	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  fmt.Sprintf("workers must be >= 0, got %d", r.Workers),
		})
	}
	if r.FileTimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.file_timeout_seconds",
			Message:  fmt.Sprintf("file timeout must be >= 0, got %d", r.FileTimeoutSeconds),
		})
	}

	return issues
}
