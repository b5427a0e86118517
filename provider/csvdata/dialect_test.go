package csvdata

import "testing"

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Dialect
	}{
		{
			"wide zhvi export",
			[]string{"RegionID", "SizeRank", "RegionName", "RegionType", "StateName", "2024-01-31", "2024-02-29"},
			DialectWide,
		},
		{
			"flat market file",
			[]string{"city", "state", "median_price", "percent_change"},
			DialectFlat,
		},
		{
			"flat with mixed case headers",
			[]string{"City", "State", "MedianPrice"},
			DialectFlat,
		},
		{
			"wide requires a date column",
			[]string{"RegionID", "RegionName", "StateName"},
			DialectUnknown,
		},
		{
			"loose date format does not count",
			[]string{"RegionID", "RegionName", "StateName", "Jan 2024"},
			DialectUnknown,
		},
		{
			"city without state is not flat",
			[]string{"city", "median_price"},
			DialectUnknown,
		},
		{
			"empty header",
			[]string{},
			DialectUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectDialect(tc.header); got != tc.want {
				t.Errorf("DetectDialect(%v) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}

func TestCleanNumber(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }
	tests := []struct {
		in   string
		want *float64
	}{
		{"550000", ptr(550000)},
		{"$550,000", ptr(550000)},
		{" 1 234.5 ", ptr(1234.5)},
		{"3.2%", ptr(3.2)},
		{"-4.1", ptr(-4.1)},
		{"", nil},
		{"n/a", nil},
		{"abc", nil},
	}
	for _, tc := range tests {
		got := cleanNumber(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("cleanNumber(%q) = %v, want nil", tc.in, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Errorf("cleanNumber(%q) = %v, want %v", tc.in, got, *tc.want)
		}
	}
}
