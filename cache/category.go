package cache

import "strings"

// Category groups cache records for stats reporting. It is derived from the
// operation segment of the record key (provider:operation:query).
type Category string

const (
	CategoryMarketStats Category = "market-stats"
	CategorySearch      Category = "search"
	CategoryProperty    Category = "property"
	CategoryOther       Category = "other"
)

// CategoryOf derives the category from a record key.
func CategoryOf(key string) Category {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return CategoryOther
	}
	switch parts[1] {
	case "market-stats":
		return CategoryMarketStats
	case "search":
		return CategorySearch
	case "property":
		return CategoryProperty
	default:
		return CategoryOther
	}
}
