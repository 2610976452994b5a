package postgres

import (
	"strings"
	"testing"

	"ballstats/internal/schema"
)

// TestQuoteIdent verifies identifiers are double-quoted with embedded quotes
// doubled, so reserved words and odd characters cannot break or inject DDL.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"player", `"player"`},
		{"select", `"select"`},
		{`odd"name`, `"odd""name"`},
	}
	for _, tc := range cases {
		if got := quoteIdent(tc.in); got != tc.want {
			t.Fatalf("quoteIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	stmt, err := buildCreateTableSQL(schema.Table{
		Name: "home_runs_stats",
		Columns: []schema.Column{
			{Name: "year", Type: schema.Integer},
			{Name: "player", Type: schema.Text},
			{Name: "home_runs", Type: schema.Real, Nullable: true},
		},
		PrimaryKey: []string{"player", "year"},
	})
	if err != nil {
		t.Fatalf("buildCreateTableSQL: %v", err)
	}

	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "home_runs_stats"`,
		`"year" BIGINT NOT NULL`,
		`"player" TEXT NOT NULL`,
		`"home_runs" DOUBLE PRECISION`,
		`PRIMARY KEY ("player", "year")`,
	} {
		if !strings.Contains(stmt, want) {
			t.Errorf("statement missing %q:\n%s", want, stmt)
		}
	}

	if _, err := buildCreateTableSQL(schema.Table{Name: " "}); err == nil {
		t.Error("want error for blank table name")
	}
	if _, err := buildCreateTableSQL(schema.Table{Name: "x"}); err == nil {
		t.Error("want error for zero columns")
	}
	if _, err := buildCreateTableSQL(schema.Table{
		Name:    "x",
		Columns: []schema.Column{{Name: " "}},
	}); err == nil {
		t.Error("want error for blank column name")
	}
}
