// Package importer persists cleaned metric datasets into keyed tables.
//
// For each dataset it derives a deterministic table name, infers the column
// schema, creates the table if absent, and appends the rows as one atomic
// unit. Every file ends in exactly one terminal outcome: Imported,
// SkippedMissingKey, SkippedNullKey, or Failed(reason); a file never re-enters
// an earlier state and never escalates its problems past itself.
//
// Duplicate (player, year) keys are rejected row by row, both within a file
// (caught by an in-memory seen-set before the storage round-trip) and against
// rows already persisted (caught by the backend inside the transaction); the
// rest of the file keeps importing. Writes to the same table are
// serialized with a per-table lock so the duplicate check is race-free;
// different tables import concurrently.
package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/zeebo/xxh3"

	"ballstats/internal/records"
	"ballstats/internal/schema"
	"ballstats/internal/storage"
)

// State is the terminal outcome kind for one imported file.
type State int

const (
	// Imported: the file's rows are fully reflected, modulo per-row
	// duplicate-key rejections.
	Imported State = iota

	// SkippedMissingKey: the dataset lacks a player or year column, so no
	// composite key can be established. Nothing was written.
	SkippedMissingKey

	// SkippedNullKey: at least one row has an empty key field, so key
	// uniqueness cannot be enforced. Nothing was written.
	SkippedNullKey

	// Failed: a storage-layer or naming failure aborted the file's
	// transaction. Nothing from this file was committed.
	Failed
)

// String returns the outcome name used in logs and summaries.
func (s State) String() string {
	switch s {
	case Imported:
		return "imported"
	case SkippedMissingKey:
		return "skipped_missing_key"
	case SkippedNullKey:
		return "skipped_null_key"
	default:
		return "failed"
	}
}

// Outcome describes how one file's import ended.
type Outcome struct {
	File       string
	Table      string
	State      State
	Inserted   int64
	Duplicates int
	Reason     string
	Err        error
}

// RejectFn receives rows rejected during import (duplicate keys). It is
// called from whichever goroutine runs the import, so implementations must be
// safe for concurrent use.
type RejectFn func(records.RejectedRecord)

// reasonDuplicateKey tags duplicate-key rejections in the audit stream.
const reasonDuplicateKey = "duplicate_key"

// Importer writes metric datasets through a storage.Repository. It is safe
// for concurrent use across files.
type Importer struct {
	repo storage.Repository

	mu     sync.Mutex
	tables map[string]*tableEntry
}

// tableEntry serializes writes to one table and remembers which dataset name
// first claimed it, so a colliding normalization is detected instead of
// silently merging two metrics.
type tableEntry struct {
	mu      sync.Mutex
	dataset string
}

// New returns an Importer writing through repo.
func New(repo storage.Repository) *Importer {
	return &Importer{
		repo:   repo,
		tables: make(map[string]*tableEntry),
	}
}

// Import persists one cleaned dataset and returns its terminal outcome.
// Rejected duplicate rows are passed to reject before the outcome is
// returned; reject may be nil when the caller does not audit duplicates.
func (im *Importer) Import(ctx context.Context, ds *records.MetricDataset, reject RejectFn) Outcome {
	out := Outcome{File: ds.SourceFile}

	tableName := schema.NormalizeName(ds.Name)
	out.Table = tableName

	entry, err := im.claimTable(tableName, ds.Name)
	if err != nil {
		out.State = Failed
		out.Reason = "table name collision"
		out.Err = err
		return out
	}

	columns := make([]string, len(ds.Header))
	seenCols := make(map[string]string, len(ds.Header))
	for i, h := range ds.Header {
		name := schema.NormalizeName(h)
		if prev, ok := seenCols[name]; ok {
			out.State = Failed
			out.Reason = "column name collision"
			out.Err = fmt.Errorf("importer: %s: columns %q and %q both normalize to %q", ds.SourceFile, prev, h, name)
			return out
		}
		seenCols[name] = h
		columns[i] = name
	}

	if !contains(columns, "player") || !contains(columns, "year") {
		out.State = SkippedMissingKey
		out.Reason = fmt.Sprintf("missing primary key columns; available: %v", columns)
		return out
	}

	// Null keys skip the whole file, so they must be found before any
	// duplicate reject is emitted: a skipped file never inserts and must not
	// deposit duplicate_key rows in the audit stream.
	for _, rec := range ds.Records {
		if rec.Player == "" {
			out.State = SkippedNullKey
			out.Reason = fmt.Sprintf("row at line %d has a null player key", rec.Line)
			return out
		}
	}

	rows := make([][]any, 0, len(ds.Records))
	kept := make([]records.ValidatedRecord, 0, len(ds.Records))
	seenKeys := make(map[uint64]struct{}, len(ds.Records))

	for _, rec := range ds.Records {
		key := keyHash(rec.Player, rec.Year)
		if _, dup := seenKeys[key]; dup {
			out.Duplicates++
			sendReject(reject, ds, rec)
			continue
		}
		seenKeys[key] = struct{}{}

		rows = append(rows, buildRow(ds, rec))
		kept = append(kept, rec)
	}

	table := schema.InferTable(tableName, columns, rows)

	// One writer per table: the create-and-append sequence below must not
	// interleave with another file targeting the same table.
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := im.repo.EnsureTable(ctx, table); err != nil {
		out.State = Failed
		out.Reason = "create table"
		out.Err = err
		return out
	}

	inserted, duplicates, err := im.repo.AppendRows(ctx, table, rows)
	if err != nil {
		out.State = Failed
		out.Reason = "append rows"
		out.Err = err
		return out
	}

	for _, i := range duplicates {
		out.Duplicates++
		sendReject(reject, ds, kept[i])
	}

	out.State = Imported
	out.Inserted = inserted
	return out
}

// claimTable registers the dataset name for a table, returning an error when
// a different dataset already normalized to the same table name.
func (im *Importer) claimTable(table, dataset string) (*tableEntry, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	e, ok := im.tables[table]
	if !ok {
		e = &tableEntry{dataset: dataset}
		im.tables[table] = e
		return e, nil
	}
	if e.dataset != dataset {
		return nil, fmt.Errorf("importer: datasets %q and %q both normalize to table %q", e.dataset, dataset, table)
	}
	return e, nil
}

// buildRow materializes one validated record in header order. Contract
// columns come from the typed projection; everything else passes through as
// cleaned text.
func buildRow(ds *records.MetricDataset, rec records.ValidatedRecord) []any {
	row := make([]any, len(ds.Header))
	for i, h := range ds.Header {
		switch h {
		case "Year":
			row[i] = rec.Year
		case "League":
			row[i] = rec.League
		case "Player":
			row[i] = rec.Player
		case "Team":
			row[i] = rec.Team
		case ds.Metric:
			row[i] = rec.MetricValue
		default:
			row[i] = rec.Extra[h]
		}
	}
	return row
}

// keyHash folds the composite key into 64 bits for the within-file seen-set.
// The unit separator keeps ("ab","1") and ("a","b1") distinct.
func keyHash(player string, year int) uint64 {
	return xxh3.HashString(fmt.Sprintf("%s\x1f%d", player, year))
}

func sendReject(reject RejectFn, ds *records.MetricDataset, rec records.ValidatedRecord) {
	if reject == nil {
		return
	}
	reject(records.RejectedRecord{
		Fields:     rec.Raw,
		Columns:    ds.Header,
		SourceFile: ds.SourceFile,
		Reason:     reasonDuplicateKey,
		Line:       rec.Line,
	})
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
