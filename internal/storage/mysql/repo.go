// Package mysql implements the storage repository on MySQL via database/sql.
// Appends run inside one transaction per file; duplicate composite keys are
// absorbed with INSERT IGNORE and detected per-row through RowsAffected.
//
// MySQL cannot index unbounded TEXT columns, so primary-key text columns
// (player) render as VARCHAR instead; see ddl.go.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// MySQL driver.
	_ "github.com/go-sql-driver/mysql"

	"ballstats/internal/schema"
)

// Repository is a MySQL-backed metric table store.
type Repository struct {
	db *sql.DB
}

// New opens a MySQL connection using the provided DSN, for example
// "user:pass@tcp(host:3306)/stats?parseTime=true", and pings it with a short
// timeout to fail fast.
func New(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// EnsureTable issues CREATE TABLE IF NOT EXISTS for the metric table.
func (r *Repository) EnsureTable(ctx context.Context, t schema.Table) error {
	stmt, err := buildCreateTableSQL(t)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: create table %s: %w", t.Name, err)
	}
	return nil
}

// AppendRows inserts rows in one transaction using a prepared INSERT IGNORE
// statement; rows whose (player, year) already exists are skipped by the
// server and reported through the duplicates index list.
func (r *Repository) AppendRows(ctx context.Context, t schema.Table, rows [][]any) (int64, []int, error) {
	if len(rows) == 0 {
		return 0, nil, nil
	}

	cols := t.ColumnNames()
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT IGNORE INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("mysql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, nil, fmt.Errorf("mysql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	var duplicates []int
	for i, row := range rows {
		if len(row) != len(cols) {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("mysql: row length %d != columns length %d", len(row), len(cols))
		}
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("mysql: insert into %s: %w", t.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("mysql: rows affected: %w", err)
		}
		if n == 0 {
			duplicates = append(duplicates, i)
			continue
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, duplicates, nil
}

// ListTables returns the tables of the current database.
func (r *Repository) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("mysql: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("mysql: scan table name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// PrimaryKey reads back a table's primary-key columns in key order.
func (r *Repository) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("mysql: primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("mysql: scan pk column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Close releases the underlying connections.
func (r *Repository) Close() error {
	return r.db.Close()
}
