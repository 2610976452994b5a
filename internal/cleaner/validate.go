package cleaner

import (
	"fmt"
	"strings"

	"ballstats/internal/records"
)

// Known league codes. A row whose League field (trimmed, upper-cased) is not
// one of these is rejected.
var validLeagues = map[string]struct{}{
	"AL": {},
	"NL": {},
}

// validateRow applies the row-level predicates to a raw record:
//
//   - Year present, non-empty, and not a repeated header token ("year").
//   - League, trimmed and upper-cased, is exactly AL or NL.
//   - The metric field is non-empty and contains at least one digit.
//
// It returns ok=true when all predicates hold, otherwise a human-readable
// reason. validateRow has no side effects; callers decide what to do with
// rejected rows.
func validateRow(r records.RawRecord, metricCol string) (bool, string) {
	year, ok := r.Get(colYear)
	if !ok || year == "" {
		return false, "year missing"
	}
	if strings.EqualFold(strings.TrimSpace(year), "year") {
		return false, "repeated header row"
	}

	league, _ := r.Get(colLeague)
	lg := strings.ToUpper(strings.TrimSpace(league))
	if _, ok := validLeagues[lg]; !ok {
		return false, fmt.Sprintf("bad league %q", league)
	}

	metric, ok := r.Get(metricCol)
	if !ok || metric == "" {
		return false, "metric value missing"
	}
	if !containsDigit(metric) {
		return false, fmt.Sprintf("metric value %q has no digits", metric)
	}

	return true, ""
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
