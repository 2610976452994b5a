package cleaner

import (
	"errors"
	"strings"
	"testing"

	csvparser "ballstats/internal/parser/csv"
	"ballstats/internal/records"
)

// dataset builds a parsed dataset fixture without touching the filesystem.
func dataset(metric string, header []string, rows ...map[string]string) *csvparser.Dataset {
	ds := &csvparser.Dataset{
		Name:         "home_runs_stats",
		SourceFile:   "home_runs_stats.csv",
		Header:       header,
		MetricColumn: metric,
	}
	for i, r := range rows {
		ds.Rows = append(ds.Rows, records.RawRecord{Fields: r, Line: i + 2})
	}
	return ds
}

var hrHeader = []string{"Year", "League", "Player", "Team", "Home Runs"}

/*
TestClean_RowClassification verifies that every row lands in exactly one of
the three buckets:
  - rows passing all predicates are converted and kept,
  - rows failing a predicate are rejected with a reason and provenance,
  - rows passing predicates but failing conversion are dropped and counted.
*/
func TestClean_RowClassification(t *testing.T) {
	t.Parallel()

	ds := dataset("Home Runs", hrHeader,
		// kept: the canonical good row
		map[string]string{"Year": "1927", "League": "AL", "Player": "Babe Ruth", "Team": "NYY", "Home Runs": "60"},
		// rejected: repeated header row embedded in the data
		map[string]string{"Year": "Year", "League": "League", "Player": "Player", "Team": "Team", "Home Runs": "Home Runs"},
		// rejected: unknown league
		map[string]string{"Year": "1900", "League": "XX", "Player": "Nobody", "Team": "???", "Home Runs": "10"},
		// rejected: metric has no digits (em dash placeholder)
		map[string]string{"Year": "1950", "League": "NL", "Player": "Someone", "Team": "BRK", "Home Runs": "—"},
		// kept: annotation after the number is tolerated
		map[string]string{"Year": "1961", "League": "AL", "Player": "Roger Maris", "Team": "NYY", "Home Runs": "61 (record)"},
		// dropped: metric parses but is not positive
		map[string]string{"Year": "1910", "League": "NL", "Player": "Zero Hero", "Team": "CHC", "Home Runs": "0"},
		// dropped: year survives validation but does not parse
		map[string]string{"Year": "19o5", "League": "AL", "Player": "Typo Year", "Team": "DET", "Home Runs": "12"},
	)

	res, err := Clean(ds)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if got := len(res.Dataset.Records); got != 2 {
		t.Fatalf("kept=%d; want 2 (%+v)", got, res.Dataset.Records)
	}
	ruth := res.Dataset.Records[0]
	if ruth.Year != 1927 || ruth.League != "AL" || ruth.Player != "Babe Ruth" || ruth.Team != "NYY" || ruth.MetricValue != 60 {
		t.Fatalf("first record mismatch: %+v", ruth)
	}
	if ruth.Line != 2 {
		t.Fatalf("line=%d; want 2", ruth.Line)
	}
	maris := res.Dataset.Records[1]
	if maris.MetricValue != 61 {
		t.Fatalf("annotated metric=%v; want 61", maris.MetricValue)
	}

	if got := len(res.Rejected); got != 3 {
		t.Fatalf("rejected=%d; want 3 (%+v)", got, res.Rejected)
	}
	wantReasons := []string{"repeated header row", `bad league "XX"`, `metric value "—" has no digits`}
	for i, want := range wantReasons {
		if res.Rejected[i].Reason != want {
			t.Errorf("rejected[%d].Reason=%q; want %q", i, res.Rejected[i].Reason, want)
		}
		if res.Rejected[i].SourceFile != "home_runs_stats.csv" {
			t.Errorf("rejected[%d].SourceFile=%q", i, res.Rejected[i].SourceFile)
		}
	}

	if res.Drops.MetricNonPositive != 1 || res.Drops.YearUnparseable != 1 || res.Drops.MetricUnparseable != 0 {
		t.Fatalf("drops=%+v; want non_positive=1 year=1", res.Drops)
	}
	if res.Drops.Total() != 2 {
		t.Fatalf("drops total=%d; want 2", res.Drops.Total())
	}

	if res.Dataset.Metric != "Home Runs" || res.Dataset.Name != "home_runs_stats" {
		t.Fatalf("dataset identity mismatch: %+v", res.Dataset)
	}
}

func TestClean_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	ds := dataset("Home Runs", []string{"Year", "Player", "Team", "Home Runs"},
		map[string]string{"Year": "1927", "Player": "Babe Ruth", "Team": "NYY", "Home Runs": "60"},
	)

	_, err := Clean(ds)
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v; want MissingColumnError", err)
	}
	if missing.Column != "League" {
		t.Fatalf("missing column=%q; want League", missing.Column)
	}
	if !strings.Contains(missing.Error(), "home_runs_stats.csv") {
		t.Fatalf("error lacks file name: %q", missing.Error())
	}
}

func TestClean_EmptyFileYieldsEmptyDataset(t *testing.T) {
	t.Parallel()

	res, err := Clean(dataset("Home Runs", hrHeader))
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Dataset == nil {
		t.Fatal("Dataset is nil; want non-nil empty dataset")
	}
	if len(res.Dataset.Records) != 0 || len(res.Rejected) != 0 || res.Drops.Total() != 0 {
		t.Fatalf("unexpected content: %+v", res)
	}
}

func TestValidateRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fields     map[string]string
		wantOK     bool
		wantReason string
	}{
		{
			name:   "valid",
			fields: map[string]string{"Year": "1998", "League": "NL", "Player": "Sammy Sosa", "Home Runs": "66"},
			wantOK: true,
		},
		{
			name:       "year empty",
			fields:     map[string]string{"Year": "", "League": "AL", "Home Runs": "10"},
			wantReason: "year missing",
		},
		{
			name:       "year absent",
			fields:     map[string]string{"League": "AL", "Home Runs": "10"},
			wantReason: "year missing",
		},
		{
			name:       "header echo case insensitive",
			fields:     map[string]string{"Year": "YEAR", "League": "AL", "Home Runs": "10"},
			wantReason: "repeated header row",
		},
		{
			name:   "league folded to upper",
			fields: map[string]string{"Year": "1998", "League": " al ", "Home Runs": "66"},
			wantOK: true,
		},
		{
			name:       "league unknown",
			fields:     map[string]string{"Year": "1998", "League": "FL", "Home Runs": "66"},
			wantReason: `bad league "FL"`,
		},
		{
			name:       "metric empty",
			fields:     map[string]string{"Year": "1998", "League": "NL", "Home Runs": ""},
			wantReason: "metric value missing",
		},
		{
			name:       "metric no digits",
			fields:     map[string]string{"Year": "1998", "League": "NL", "Home Runs": "n/a"},
			wantReason: `metric value "n/a" has no digits`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ok, reason := validateRow(records.RawRecord{Fields: tc.fields, Line: 2}, "Home Runs")
			if ok != tc.wantOK {
				t.Fatalf("ok=%v reason=%q; want ok=%v", ok, reason, tc.wantOK)
			}
			if !tc.wantOK && reason != tc.wantReason {
				t.Fatalf("reason=%q; want %q", reason, tc.wantReason)
			}
		})
	}
}

func TestConvertRow(t *testing.T) {
	t.Parallel()

	header := []string{"Year", "League", "Player", "Team", "Games", "Home Runs"}

	rec, drop := convertRow(records.RawRecord{
		Fields: map[string]string{
			"Year": " 1961 ", "League": "al", "Player": "Roger-Maris ", "Team": "N-Y-Y",
			"Games": " 161", "Home Runs": "61 (record)",
		},
		Line: 5,
	}, header, "Home Runs")

	if drop != dropNone {
		t.Fatalf("drop=%v; want none", drop)
	}
	if rec.Year != 1961 {
		t.Errorf("year=%d; want 1961", rec.Year)
	}
	if rec.League != "AL" {
		t.Errorf("league=%q; want AL", rec.League)
	}
	if rec.Player != "RogerMaris" || rec.Team != "NYY" {
		t.Errorf("hyphens not stripped: player=%q team=%q", rec.Player, rec.Team)
	}
	if rec.MetricValue != 61 {
		t.Errorf("metric=%v; want 61", rec.MetricValue)
	}
	if rec.Extra["Games"] != "161" {
		t.Errorf("extra Games=%q; want 161", rec.Extra["Games"])
	}
	if rec.Line != 5 {
		t.Errorf("line=%d; want 5", rec.Line)
	}
}

func TestConvertRow_Drops(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		year   string
		metric string
		want   dropKind
	}{
		{"year not integer", "19o5", "10", dropYearUnparseable},
		{"metric bare dot run", "1905", ".", dropMetricUnparseable},
		{"metric malformed number", "1905", "1.2.3", dropMetricUnparseable},
		{"metric zero", "1905", "0", dropMetricNonPositive},
		{"metric fractional kept", "1905", "0.5", dropNone},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, drop := convertRow(records.RawRecord{Fields: map[string]string{
				"Year": tc.year, "League": "AL", "Player": "P", "Team": "T", "Home Runs": tc.metric,
			}}, hrHeader, "Home Runs")
			if drop != tc.want {
				t.Fatalf("drop=%v; want %v", drop, tc.want)
			}
		})
	}
}

func TestLeadingNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"60", "60"},
		{"61 (record)", "61"},
		{".406", ".406"},
		{"avg 42 tied", "42"},
		{"—", ""},
		{"", ""},
		{"12.5x7", "12.5"},
	}
	for _, tc := range tests {
		if got := leadingNumber(tc.in); got != tc.want {
			t.Errorf("leadingNumber(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}
