package schema

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestInferColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []any
		want   ColumnType
	}{
		{"typed ints", []any{1927, 1961, 1998}, Integer},
		{"typed floats are real even when whole", []any{60.0, 61.0}, Real},
		{"mixed int and float", []any{1, 2.5}, Real},
		{"string ints", []any{"1", "22", "-3"}, Integer},
		{"string floats", []any{"1.5", "2", "3e2"}, Real},
		{"strings", []any{"NYY", "BOS"}, Text},
		{"numeric with stray text", []any{"12", "n/a"}, Text},
		{"dates stay text", []any{"2024-01-02", "2024/03/04"}, Text},
		{"empty strings ignored", []any{"", "42", ""}, Integer},
		{"all empty defaults to text", []any{"", "", nil}, Text},
		{"no values defaults to text", nil, Text},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := InferColumn(tc.values); got != tc.want {
				t.Fatalf("InferColumn(%v)=%v; want %v", tc.values, got, tc.want)
			}
		})
	}
}

func TestInferTable(t *testing.T) {
	t.Parallel()

	columns := []string{"year", "league", "player", "team", "home_runs"}
	rows := [][]any{
		{1927, "AL", "Babe Ruth", "NYY", 60.0},
		{1961, "AL", "Roger Maris", "NYY", 61.0},
	}

	tbl := InferTable("home_runs_stats", columns, rows)

	if tbl.Name != "home_runs_stats" {
		t.Fatalf("name=%q", tbl.Name)
	}
	if !reflect.DeepEqual(tbl.PrimaryKey, []string{"player", "year"}) {
		t.Fatalf("primary key=%v; want [player year]", tbl.PrimaryKey)
	}

	wantTypes := map[string]ColumnType{
		"year":      Integer,
		"league":    Text,
		"player":    Text,
		"team":      Text,
		"home_runs": Real,
	}
	for _, c := range tbl.Columns {
		if c.Type != wantTypes[c.Name] {
			t.Errorf("column %s: type=%v; want %v", c.Name, c.Type, wantTypes[c.Name])
		}
		isPK := c.Name == "player" || c.Name == "year"
		if c.Nullable == isPK {
			t.Errorf("column %s: nullable=%v; want %v", c.Name, c.Nullable, !isPK)
		}
	}
}

// Classification must depend only on each column's value set, never on the
// order rows arrive.
func TestInferTable_OrderInvariant(t *testing.T) {
	t.Parallel()

	columns := []string{"year", "player", "avg"}
	rows := [][]any{
		{1941, "Ted Williams", 0.406},
		{1924, "Rogers Hornsby", 0.424},
		{1894, "Hugh Duffy", 0.440},
		{1901, "Nap Lajoie", 0.426},
	}

	want := InferTable("batting_avg", columns, rows)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([][]any, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := InferTable("batting_avg", columns, shuffled)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %d changed the schema:\n got %+v\nwant %+v", i, got, want)
		}
	}
}
