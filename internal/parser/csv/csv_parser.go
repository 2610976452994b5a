// Package csv reads per-metric tabular export files into raw string records.
//
// Exports are small (one metric, a few thousand rows at most), so the parser
// materializes the whole file instead of streaming. It applies the header
// contract checks that later stages rely on: a trimmed, BOM-stripped header
// and a resolved metric column. All cell values stay strings; typing happens
// in the cleaner.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ballstats/internal/records"
)

// Options configures the parser. All fields are optional; zero values fall
// back to sensible defaults.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool
}

// Dataset is the raw, string-typed content of one metric export file.
type Dataset struct {
	// Name is the file base name without extension, e.g. "home_runs_stats".
	Name string

	// SourceFile is the file base name including extension.
	SourceFile string

	// Header holds the trimmed column names in file order.
	Header []string

	// MetricColumn is the resolved metric column header (see ResolveMetricColumn).
	MetricColumn string

	// Rows are the data rows, in file order.
	Rows []records.RawRecord
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// ReadFile parses one export file into a Dataset. It fails on an unreadable
// file, a missing header, or an empty column set; short rows are padded with
// empty strings and long rows are truncated to the header width, so a ragged
// file never aborts the batch.
func ReadFile(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open: %w", err)
	}
	defer f.Close()

	ds, err := read(f, opt)
	if err != nil {
		return nil, fmt.Errorf("csv: %s: %w", filepath.Base(path), err)
	}

	base := filepath.Base(path)
	ds.SourceFile = base
	ds.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return ds, nil
}

// read parses CSV content from r. Split out from ReadFile so tests can feed
// inline fixtures without touching the filesystem.
func read(r io.Reader, opt Options) (*Dataset, error) {
	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1 // tolerate ragged rows; width is enforced below
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rawHeader, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	header := make([]string, 0, len(rawHeader))
	for i, h := range rawHeader {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header = append(header, strings.TrimSpace(h))
	}
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, fmt.Errorf("no columns in header")
	}

	ds := &Dataset{
		Header:       header,
		MetricColumn: ResolveMetricColumn(header),
	}

	line := 1 // header occupies line 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		fields := make(map[string]string, len(header))
		for i, name := range header {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			fields[name] = v
		}
		ds.Rows = append(ds.Rows, records.RawRecord{Fields: fields, Line: line})
	}

	return ds, nil
}

// ResolveMetricColumn determines which header names the metric column. The
// metric name is taken from the last column header; it is then matched back
// against the header case- and space-insensitively. If no header matches,
// the last column is used and a diagnostic is logged.
func ResolveMetricColumn(header []string) string {
	want := foldHeader(header[len(header)-1])
	for _, h := range header {
		if foldHeader(h) == want {
			return h
		}
	}
	// The last column always matches itself, so this branch only runs for
	// callers that pass a pre-folded name that no longer equals any header.
	last := header[len(header)-1]
	log.Printf("csv: no exact metric column match for %q; using last column %q", want, last)
	return last
}

// foldHeader lowers a header name and removes internal spaces so "Home Runs",
// "home runs", and "HomeRuns" compare equal.
func foldHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}
