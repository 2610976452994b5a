// Package sqlite implements the storage repository on SQLite via
// database/sql. It is the default backend: one file per store, no server,
// which matches how the finished tables are handed to read-only consumers.
//
// Appends run inside a single transaction per file. Duplicate composite keys
// are absorbed with INSERT OR IGNORE and detected per-row through the
// statement's RowsAffected, so one duplicate never aborts the file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ballstats/internal/schema"
)

// Repository is a SQLite-backed metric table store.
type Repository struct {
	db *sql.DB
}

// New opens a SQLite database using the provided DSN, for example:
//
//	"file:stats.db?cache=shared&_fk=1"
//	"stats.db"
//
// It pings with a short timeout to fail fast on invalid DSNs.
func New(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// SQLite is a single-writer store; keeping one pooled connection also
	// makes ":memory:" DSNs behave (each new connection would otherwise get
	// its own empty database).
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// EnsureTable issues CREATE TABLE IF NOT EXISTS for the metric table. A
// second call with an identical schema is a no-op.
func (r *Repository) EnsureTable(ctx context.Context, t schema.Table) error {
	stmt, err := buildCreateTableSQL(t)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", t.Name, err)
	}
	return nil
}

// AppendRows inserts rows in one transaction using a prepared
// INSERT OR IGNORE statement. Rows whose (player, year) already exists are
// skipped by SQLite and reported through the duplicates index list.
func (r *Repository) AppendRows(ctx context.Context, t schema.Table, rows [][]any) (int64, []int, error) {
	if len(rows) == 0 {
		return 0, nil, nil
	}

	cols := t.ColumnNames()
	placeholders := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		quoted[i] = quoteIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, nil, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	var duplicates []int
	for i, row := range rows {
		if len(row) != len(cols) {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(cols))
		}
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("sqlite: insert into %s: %w", t.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if n == 0 {
			duplicates = append(duplicates, i)
			continue
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, duplicates, nil
}

// ListTables returns all table names in the store.
func (r *Repository) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("sqlite: scan table name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// PrimaryKey reads back a table's primary-key columns in key order.
func (r *Repository) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk", table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("sqlite: scan pk column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Close releases the underlying connection.
func (r *Repository) Close() error {
	return r.db.Close()
}
