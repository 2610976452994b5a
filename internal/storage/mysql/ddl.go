package mysql

import (
	"fmt"
	"strings"

	"ballstats/internal/schema"
)

// pkVarcharLen bounds key text columns; 191 keeps composite utf8mb4 indexes
// inside InnoDB's 767-byte prefix limit on older server versions.
const pkVarcharLen = 191

// buildCreateTableSQL renders a metric table schema as MySQL DDL with a
// composite primary-key constraint. Text columns that participate in the key
// become VARCHAR because MySQL cannot index unbounded TEXT.
func buildCreateTableSQL(t schema.Table) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("mysql ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}

	pk := make(map[string]struct{}, len(t.PrimaryKey))
	for _, k := range t.PrimaryKey {
		pk[k] = struct{}{}
	}

	defs := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("mysql ddl: column with empty name in table %s", t.Name)
		}
		_, isKey := pk[c.Name]
		def := quoteIdent(c.Name) + " " + sqlType(c.Type, isKey)
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

// sqlType maps the logical column type onto MySQL types.
func sqlType(t schema.ColumnType, primaryKey bool) string {
	switch t {
	case schema.Integer:
		return "BIGINT"
	case schema.Real:
		return "DOUBLE"
	default:
		if primaryKey {
			return fmt.Sprintf("VARCHAR(%d)", pkVarcharLen)
		}
		return "TEXT"
	}
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
