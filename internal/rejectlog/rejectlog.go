// Package rejectlog aggregates rejected rows across a batch into one
// tab-separated audit artifact.
//
// The logger is the single aggregation point for every worker path: all
// additions go through a mutex-guarded accumulator, never through shared
// mutation of the underlying slices. Rows are kept verbatim; at batch end
// every field is coerced to text and written under the union of all rejected
// rows' original columns plus a trailing source_file column. An empty batch
// still produces a valid (header-only) artifact.
package rejectlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"ballstats/internal/records"
)

// Logger accumulates rejected rows for one batch run.
type Logger struct {
	mu      sync.Mutex
	columns []string // union of original columns, first-seen order
	seen    map[string]struct{}
	rows    []records.RejectedRecord
}

// New returns an empty Logger.
func New() *Logger {
	return &Logger{seen: make(map[string]struct{})}
}

// Add appends one rejected row and extends the column union with any columns
// not seen before, preserving first-seen order. Safe for concurrent use.
func (l *Logger) Add(r records.RejectedRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range r.Columns {
		if _, ok := l.seen[c]; ok {
			continue
		}
		l.seen[c] = struct{}{}
		l.columns = append(l.columns, c)
	}
	l.rows = append(l.rows, r)
}

// Len returns the number of accumulated rows.
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

// Sample returns up to n accumulated rows, in insertion order.
func (l *Logger) Sample(n int) []records.RejectedRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.rows) {
		n = len(l.rows)
	}
	out := make([]records.RejectedRecord, n)
	copy(out, l.rows[:n])
	return out
}

// WriteTSV writes the audit artifact to path. The header is the column union
// plus a trailing "source_file"; all values are textual, with absent columns
// written as empty strings. Zero rejections still writes the (header-only)
// artifact and is not an error.
func (l *Logger) WriteTSV(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rejectlog: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := append(append([]string{}, l.columns...), "source_file")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("rejectlog: write header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range l.rows {
		for i, c := range l.columns {
			row[i] = r.Fields[c]
		}
		row[len(row)-1] = r.SourceFile
		if err := w.Write(row); err != nil {
			return fmt.Errorf("rejectlog: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("rejectlog: flush: %w", err)
	}
	return nil
}
