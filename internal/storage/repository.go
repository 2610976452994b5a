// Package storage contains the storage-agnostic repository contract for
// metric tables and the factory that constructs a concrete backend from
// configuration. Backends live in subpackages (sqlite, postgres, mysql) and
// keep all driver-specific code out of the rest of the program.
package storage

import (
	"context"
	"fmt"

	"ballstats/internal/schema"
	"ballstats/internal/storage/mysql"
	"ballstats/internal/storage/postgres"
	"ballstats/internal/storage/sqlite"
)

// Repository is the minimal contract the importer needs from a backend.
//
// AppendRows must execute as a single transaction: either every non-duplicate
// row of the call is committed, or (on error) none are. A duplicate composite
// key is not an error; AppendRows reports the indexes (into rows) of skipped
// duplicates so the caller can reject those rows individually and keep the
// file going, with the existing rows left unchanged.
type Repository interface {
	// EnsureTable creates the table if absent, with its composite primary
	// key. Calling it again with an identical schema is a no-op.
	EnsureTable(ctx context.Context, t schema.Table) error

	// AppendRows inserts rows aligned with t.Columns inside one transaction.
	AppendRows(ctx context.Context, t schema.Table, rows [][]any) (inserted int64, duplicates []int, err error)

	// ListTables returns the names of all tables in the store.
	ListTables(ctx context.Context) ([]string, error)

	// PrimaryKey returns the primary-key column names of a table, in key
	// order. Used by the verification pass and tests.
	PrimaryKey(ctx context.Context, table string) ([]string, error)

	// Close releases the underlying connections.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Kind selects the backend: "sqlite", "postgres", or "mysql".
	Kind string

	// DSN is the backend connection string.
	DSN string
}

// New constructs the configured Repository. A connection failure here is the
// one unrecoverable error of a batch run; everything later degrades per-file.
func New(ctx context.Context, cfg Config) (Repository, error) {
	switch cfg.Kind {
	case "sqlite", "":
		return sqlite.New(ctx, cfg.DSN)
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	case "mysql":
		return mysql.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("storage: unsupported kind %q", cfg.Kind)
	}
}
