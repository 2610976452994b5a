package schema

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the formats a string column may use and still count as
// "plausibly a date". Date-typed columns are stored as Text; the layouts only
// matter for classification.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	time.RFC3339,
}

// InferTable derives a Table from the normalized column names and the
// finalized row values of one metric's cleaned dataset. Classification is
// per-column and depends only on the column's value set, never on row order.
// Primary-key columns are forced non-nullable; their inferred base type is
// unchanged.
func InferTable(name string, columns []string, rows [][]any) Table {
	t := Table{
		Name:       name,
		PrimaryKey: PrimaryKeyColumns,
	}
	for i, col := range columns {
		values := make([]any, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		t.Columns = append(t.Columns, Column{
			Name:     col,
			Type:     InferColumn(values),
			Nullable: !isPrimaryKey(col, PrimaryKeyColumns),
		})
	}
	return t
}

// InferColumn classifies one materialized column:
//
//   - every value an integer        -> Integer
//   - else every value numeric      -> Real
//   - else every value date-shaped  -> Text (dates are stored as text)
//   - else                          -> Text
//
// Typed values classify by their Go type (a float64 column is Real even when
// every value is whole, matching how converted metric columns behave); string
// values classify by parsing. Empty strings are ignored, and an all-empty or
// empty column defaults to Text.
func InferColumn(values []any) ColumnType {
	nonEmpty := 0
	allInt := true
	allNumeric := true
	allDate := true

	for _, v := range values {
		switch t := v.(type) {
		case nil:
			continue
		case int, int32, int64:
			nonEmpty++
			allDate = false
		case float64:
			nonEmpty++
			allInt = false
			allDate = false
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			nonEmpty++
			if !isInt(s) {
				allInt = false
				if !isFloat(s) {
					allNumeric = false
				}
			}
			if !isDate(s) {
				allDate = false
			}
		default:
			nonEmpty++
			allInt = false
			allNumeric = false
			allDate = false
		}
	}

	switch {
	case nonEmpty == 0:
		return Text
	case allInt:
		return Integer
	case allNumeric:
		return Real
	case allDate:
		return Text // dates are text, never a temporal type
	default:
		return Text
	}
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation floats.
func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// isDate reports whether s matches any of the recognized date layouts.
func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
