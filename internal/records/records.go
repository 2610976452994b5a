// Package records defines the row-shaped values passed between pipeline
// stages: raw parsed rows, typed validated rows, rejected rows carrying audit
// provenance, and the per-file dataset that groups them. It has no
// dependencies so every stage can import it freely.
package records

// RawRecord is one parsed data row, keyed by trimmed header name. Line is the
// 1-based line number in the source file (the header is line 1).
type RawRecord struct {
	Fields map[string]string
	Line   int
}

// Get returns the value for column name and whether the column exists.
func (r RawRecord) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// RejectedRecord is a row excluded by a validation predicate or a
// duplicate-key check, retained verbatim for the batch audit artifact.
type RejectedRecord struct {
	// Fields holds the row's original values keyed by column name.
	Fields map[string]string

	// Columns preserves the source file's column order for the artifact.
	Columns []string

	// SourceFile is the base name of the file the row came from.
	SourceFile string

	// Reason says which predicate failed, e.g. `bad league "XX"`.
	Reason string

	// Line is the row's 1-based line number in the source file.
	Line int
}

// ValidatedRecord is one row that passed validation and type conversion.
type ValidatedRecord struct {
	Year        int
	League      string
	Player      string
	Team        string
	MetricValue float64

	// Extra holds cleaned values of columns outside the header contract,
	// keyed by original column name.
	Extra map[string]string

	// Raw preserves the original untyped values for audit use.
	Raw map[string]string

	// Line is the row's 1-based line number in the source file.
	Line int
}

// MetricDataset is the cleaned content of one metric export file.
type MetricDataset struct {
	// Name is the file base name without extension; the table name derives
	// from it.
	Name string

	// Metric is the resolved metric column header.
	Metric string

	// SourceFile is the base name including extension.
	SourceFile string

	// Header holds the original column names in file order.
	Header []string

	// Records are the validated, converted rows in file order.
	Records []ValidatedRecord
}
