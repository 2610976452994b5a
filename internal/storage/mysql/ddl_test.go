package mysql

import (
	"strings"
	"testing"

	"ballstats/internal/schema"
)

// TestQuoteIdent verifies backtick quoting with embedded backticks doubled.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"player", "`player`"},
		{"tick`name", "`tick``name`"},
	}
	for _, tc := range cases {
		if got := quoteIdent(tc.in); got != tc.want {
			t.Fatalf("quoteIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

// Key text columns must render as bounded VARCHAR because InnoDB cannot index
// unbounded TEXT; non-key text stays TEXT.
func TestBuildCreateTableSQL_KeyVarchar(t *testing.T) {
	t.Parallel()

	stmt, err := buildCreateTableSQL(schema.Table{
		Name: "home_runs_stats",
		Columns: []schema.Column{
			{Name: "year", Type: schema.Integer},
			{Name: "player", Type: schema.Text},
			{Name: "team", Type: schema.Text, Nullable: true},
			{Name: "home_runs", Type: schema.Real, Nullable: true},
		},
		PrimaryKey: []string{"player", "year"},
	})
	if err != nil {
		t.Fatalf("buildCreateTableSQL: %v", err)
	}

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `home_runs_stats`",
		"`year` BIGINT NOT NULL",
		"`player` VARCHAR(191) NOT NULL",
		"`team` TEXT",
		"`home_runs` DOUBLE",
		"PRIMARY KEY (`player`, `year`)",
	} {
		if !strings.Contains(stmt, want) {
			t.Errorf("statement missing %q:\n%s", want, stmt)
		}
	}

	if _, err := buildCreateTableSQL(schema.Table{Name: ""}); err == nil {
		t.Error("want error for empty table name")
	}
	if _, err := buildCreateTableSQL(schema.Table{Name: "x"}); err == nil {
		t.Error("want error for zero columns")
	}
}
