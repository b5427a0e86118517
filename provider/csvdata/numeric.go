package csvdata

import (
	"strconv"
	"strings"
)

// numericCleaner strips the decoration flat files carry on numeric fields.
var numericCleaner = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", "\t", "")

// cleanNumber parses a numeric cell, stripping currency symbols, thousands
// separators and whitespace. Unparsable values become nil, never 0 or NaN.
func cleanNumber(raw string) *float64 {
	s := numericCleaner.Replace(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
