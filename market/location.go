package market

import (
	"regexp"
	"strings"
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}$`)

// Location is a parsed user query: either a 5-digit ZIP code or a free-text
// "City, State" string.
type Location struct {
	Raw     string
	City    string
	State   string
	ZipCode string
}

// ParseLocation classifies raw as a ZIP code (numeric-only 5-character
// string) or splits it into city and state on the first comma.
func ParseLocation(raw string) Location {
	trimmed := strings.TrimSpace(raw)
	loc := Location{Raw: trimmed}

	if zipPattern.MatchString(trimmed) {
		loc.ZipCode = trimmed
		return loc
	}

	if idx := strings.Index(trimmed, ","); idx >= 0 {
		loc.City = strings.TrimSpace(trimmed[:idx])
		loc.State = strings.TrimSpace(trimmed[idx+1:])
	} else {
		loc.City = trimmed
	}
	return loc
}

// IsZip reports whether the location is a ZIP code query.
func (l Location) IsZip() bool { return l.ZipCode != "" }

// CacheKey is the normalized query form used in cache keys.
func (l Location) CacheKey() string {
	return strings.ToLower(l.Raw)
}

// DisplayName renders the location for record names.
func (l Location) DisplayName() string {
	if l.IsZip() {
		return l.ZipCode
	}
	if l.State != "" {
		return l.City + ", " + l.State
	}
	return l.City
}
