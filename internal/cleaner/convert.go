package cleaner

import (
	"strconv"
	"strings"

	"ballstats/internal/records"
)

// dropKind classifies why a validated row was excluded during conversion.
// Dropped rows never reach the rejection log; they are only counted.
type dropKind int

const (
	dropNone dropKind = iota
	dropYearUnparseable
	dropMetricUnparseable
	dropMetricNonPositive
)

// convertRow turns a validated raw row into a typed record.
//
// The year must parse as an integer and the metric field must yield a leading
// numeric substring parsing to a value > 0; otherwise the row is dropped with
// the corresponding kind. Player and team have placeholder hyphens stripped
// and surrounding whitespace trimmed. Columns outside the header contract are
// trimmed and passed through in Extra.
func convertRow(r records.RawRecord, header []string, metricCol string) (records.ValidatedRecord, dropKind) {
	yearRaw, _ := r.Get(colYear)
	year, err := strconv.Atoi(strings.TrimSpace(yearRaw))
	if err != nil {
		return records.ValidatedRecord{}, dropYearUnparseable
	}

	metricRaw, _ := r.Get(metricCol)
	num := leadingNumber(metricRaw)
	if num == "" {
		return records.ValidatedRecord{}, dropMetricUnparseable
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return records.ValidatedRecord{}, dropMetricUnparseable
	}
	if value <= 0 {
		return records.ValidatedRecord{}, dropMetricNonPositive
	}

	leagueRaw, _ := r.Get(colLeague)
	playerRaw, _ := r.Get(colPlayer)
	teamRaw, _ := r.Get(colTeam)

	rec := records.ValidatedRecord{
		Year:        year,
		League:      strings.ToUpper(strings.TrimSpace(leagueRaw)),
		Player:      cleanName(playerRaw),
		Team:        cleanName(teamRaw),
		MetricValue: value,
		Raw:         r.Fields,
		Line:        r.Line,
	}

	for _, col := range header {
		switch col {
		case colYear, colLeague, colPlayer, colTeam, metricCol:
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		v, _ := r.Get(col)
		rec.Extra[col] = strings.TrimSpace(v)
	}

	return rec, dropNone
}

// cleanName strips internal hyphens (the source's placeholder for missing
// data) and surrounding whitespace from player and team names.
func cleanName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "-", ""))
}

// leadingNumber extracts the first run of digits and dots from s, which
// tolerates trailing annotations such as "42 (tied)". The run must contain at
// least one digit; a run like "." is returned as-is and left for ParseFloat
// to reject.
func leadingNumber(s string) string {
	start := -1
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start < 0 {
		return ""
	}
	return s[start:]
}
