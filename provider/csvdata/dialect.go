package csvdata

import (
	"regexp"
	"strings"
)

// Dialect is a structurally distinct CSV layout requiring its own parsing
// rules, detected from the header row.
type Dialect int

const (
	// DialectUnknown means the header matches neither supported layout.
	DialectUnknown Dialect = iota
	// DialectFlat is one row per market with named statistic columns.
	DialectFlat
	// DialectWide is a ZHVI-style time series: each date is a column and
	// each row is one market's value history.
	DialectWide
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectFlat:
		return "flat"
	case DialectWide:
		return "wide"
	default:
		return "unknown"
	}
}

// datePattern matches strict YYYY-MM-DD column headers.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// normalizeHeader lowercases and trims a header cell for exact-name matching.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// DetectDialect classifies the header row. Wide format requires a region
// identifier, a region name, a state name column and at least one strict
// date column; flat format requires city and state columns.
func DetectDialect(header []string) Dialect {
	cols := make(map[string]bool, len(header))
	hasDate := false
	for _, h := range header {
		n := normalizeHeader(h)
		cols[n] = true
		if datePattern.MatchString(n) {
			hasDate = true
		}
	}

	if cols["regionid"] && cols["regionname"] && cols["statename"] && hasDate {
		return DialectWide
	}
	if cols["city"] && cols["state"] {
		return DialectFlat
	}
	return DialectUnknown
}
