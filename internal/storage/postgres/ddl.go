package postgres

import (
	"fmt"
	"strings"

	"ballstats/internal/schema"
)

// buildCreateTableSQL renders a metric table schema as Postgres DDL with a
// composite primary-key constraint.
func buildCreateTableSQL(t schema.Table) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("postgres ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}

	defs := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("postgres ddl: column with empty name in table %s", t.Name)
		}
		def := quoteIdent(c.Name) + " " + sqlType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	if len(t.PrimaryKey) > 0 {
		pks := make([]string, len(t.PrimaryKey))
		for i, k := range t.PrimaryKey {
			pks[i] = quoteIdent(k)
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteIdent(t.Name),
		strings.Join(defs, ",\n  "),
	), nil
}

// sqlType maps the logical column type onto Postgres types. Integer widens
// to BIGINT so career counting stats never overflow.
func sqlType(t schema.ColumnType) string {
	switch t {
	case schema.Integer:
		return "BIGINT"
	case schema.Real:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
