package csvdata

import (
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
)

// flatAliases maps each logical statistic to the accepted header names
// (snake_case and camelCase forms, compared lowercased).
var flatAliases = map[string][]string{
	"city":    {"city"},
	"state":   {"state"},
	"zip":     {"zip", "zipcode", "zip_code"},
	"median":  {"median_price", "medianprice", "median_sale_price", "median"},
	"average": {"average_price", "averageprice", "avg_price", "avgprice", "average"},
	"min":     {"min_price", "minprice"},
	"max":     {"max_price", "maxprice"},
	"pct":     {"percent_change", "percentchange", "pct_change", "change"},
	"ppsf":    {"price_per_sqft", "pricepersquarefoot", "price_per_square_foot"},
	"sqft":    {"square_footage", "squarefootage", "sqft"},
	"dom":     {"days_on_market", "daysonmarket", "dom"},
	"updated": {"last_updated", "lastupdateddate", "last_updated_date"},
}

// flatColumns resolves header positions for each logical statistic.
func flatColumns(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[normalizeHeader(h)] = i
	}

	cols := make(map[string]int)
	for field, aliases := range flatAliases {
		for _, alias := range aliases {
			if idx, ok := byName[alias]; ok {
				cols[field] = idx
				break
			}
		}
	}
	return cols
}

// parseFlat converts flat-format rows into market statistics. Rows with a
// mismatched field count or records failing the validation gate are skipped
// with a warning, never fatal.
func parseFlat(header []string, rows [][]string, log *logger.Logger) (stats []*market.Stats, skipped int) {
	cols := flatColumns(header)

	cell := func(row []string, field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for i, row := range rows {
		if len(row) != len(header) {
			log.Warn("skipping row with mismatched field count", map[string]interface{}{
				"row": i + 2, "fields": len(row), "expected": len(header),
			})
			skipped++
			continue
		}

		loc := market.Location{
			City:    cell(row, "city"),
			State:   cell(row, "state"),
			ZipCode: cell(row, "zip"),
		}
		name := loc.DisplayName()

		s := &market.Stats{
			ID:      market.Slug(name),
			Name:    name,
			City:    loc.City,
			State:   loc.State,
			ZipCode: loc.ZipCode,
			SaleData: market.SaleData{
				MinPrice:      cleanNumber(cell(row, "min")),
				MaxPrice:      cleanNumber(cell(row, "max")),
				PricePerSqft:  cleanNumber(cell(row, "ppsf")),
				SquareFootage: cleanNumber(cell(row, "sqft")),
				DaysOnMarket:  cleanNumber(cell(row, "dom")),
				LastUpdated:   cell(row, "updated"),
			},
		}
		if v := cleanNumber(cell(row, "median")); v != nil {
			s.SaleData.MedianPrice = *v
		}
		if v := cleanNumber(cell(row, "average")); v != nil {
			s.SaleData.AveragePrice = *v
		}
		if v := cleanNumber(cell(row, "pct")); v != nil {
			s.PercentChange = *v
		}
		s.Direction = market.DirectionOf(s.PercentChange)

		if err := market.Validate(s); err != nil {
			log.Warn("skipping row failing validation gate", map[string]interface{}{
				"row": i + 2, "reason": err.Error(),
			})
			skipped++
			continue
		}
		stats = append(stats, s)
	}
	return stats, skipped
}
