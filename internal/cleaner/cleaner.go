// Package cleaner implements the validation and type-conversion stage of the
// import pipeline.
//
// Clean is a pure function of one file's content: it classifies every raw row
// as validated, rejected, or dropped, and never touches shared state. That
// keeps per-file cleaning trivially safe to run concurrently across files.
//
// Rejected rows (failed predicates) are retained with provenance for the
// batch audit artifact. Dropped rows (passed validation but failed numeric
// conversion, or produced a non-positive metric) are excluded silently and
// only counted, so the loss is at least visible in the batch summary.
package cleaner

import (
	"fmt"

	csvparser "ballstats/internal/parser/csv"
	"ballstats/internal/records"
)

// Header contract column names.
const (
	colYear   = "Year"
	colLeague = "League"
	colPlayer = "Player"
	colTeam   = "Team"
)

// MissingColumnError reports a required header column absent from a file.
// Files with this error are skipped whole; the batch continues.
type MissingColumnError struct {
	File   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q missing", e.File, e.Column)
}

// DropStats counts rows silently excluded during conversion, per cause.
type DropStats struct {
	YearUnparseable   int
	MetricUnparseable int
	MetricNonPositive int
}

// Total returns the number of dropped rows across all causes.
func (d DropStats) Total() int {
	return d.YearUnparseable + d.MetricUnparseable + d.MetricNonPositive
}

// Result is the outcome of cleaning one file.
type Result struct {
	// Dataset holds the validated, converted rows. It is non-nil even when
	// empty so callers can read the metric name and header.
	Dataset *records.MetricDataset

	// Rejected holds rows that failed validation, tagged with provenance.
	Rejected []records.RejectedRecord

	// Drops counts conversion failures (excluded from Dataset and Rejected).
	Drops DropStats
}

// Clean validates and converts every row of one parsed export file.
//
// It returns a MissingColumnError when the Year, League, or metric column is
// absent from the header; otherwise each row lands in exactly one of the
// validated dataset, the rejected set, or the drop counters.
func Clean(ds *csvparser.Dataset) (Result, error) {
	metricCol := ds.MetricColumn

	for _, required := range []string{colYear, colLeague, metricCol} {
		if !hasColumn(ds.Header, required) {
			return Result{}, &MissingColumnError{File: ds.SourceFile, Column: required}
		}
	}

	out := Result{
		Dataset: &records.MetricDataset{
			Name:       ds.Name,
			Metric:     metricCol,
			SourceFile: ds.SourceFile,
			Header:     ds.Header,
		},
	}

	for _, row := range ds.Rows {
		ok, reason := validateRow(row, metricCol)
		if !ok {
			out.Rejected = append(out.Rejected, records.RejectedRecord{
				Fields:     row.Fields,
				Columns:    ds.Header,
				SourceFile: ds.SourceFile,
				Reason:     reason,
				Line:       row.Line,
			})
			continue
		}

		rec, drop := convertRow(row, ds.Header, metricCol)
		switch drop {
		case dropNone:
			out.Dataset.Records = append(out.Dataset.Records, rec)
		case dropYearUnparseable:
			out.Drops.YearUnparseable++
		case dropMetricUnparseable:
			out.Drops.MetricUnparseable++
		case dropMetricNonPositive:
			out.Drops.MetricNonPositive++
		}
	}

	return out, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
