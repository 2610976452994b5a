// Package schema defines the database-agnostic table model for metric tables
// and the pure functions that derive it: column type inference over a
// materialized column, and identifier normalization for table and column
// names. Rendering the model into backend-specific DDL lives with each
// storage backend.
package schema

// ColumnType is the closed set of logical column types a metric table can
// carry. Dates deliberately stay Text; the store never gets a temporal type.
type ColumnType int

const (
	Integer ColumnType = iota
	Real
	Text
)

// String returns the canonical upper-case name of the type.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column describes a single column in a metric table.
type Column struct {
	// Name is the normalized column name (see NormalizeName).
	Name string

	// Type is the inferred logical type.
	Type ColumnType

	// Nullable is false for primary-key columns regardless of inferred type.
	Nullable bool
}

// Table is the schema of one metric table. It is created once at first
// import and never altered afterward; there is no migration mechanism.
type Table struct {
	// Name is the normalized table name.
	Name string

	// Columns lists the table's columns in source-header order.
	Columns []Column

	// PrimaryKey names the composite key columns, always ("player", "year").
	PrimaryKey []string
}

// PrimaryKeyColumns is the fixed composite key every metric table carries.
var PrimaryKeyColumns = []string{"player", "year"}

// Column returns the column with the given name and whether it exists.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the table's column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// isPrimaryKey reports whether name is part of the composite key.
func isPrimaryKey(name string, pk []string) bool {
	for _, k := range pk {
		if k == name {
			return true
		}
	}
	return false
}
