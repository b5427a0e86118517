package csvdata

import (
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
)

// trailingWindow is the number of most recent observations folded into the
// min/max/average rolling statistics.
const trailingWindow = 12

// wideIdentity locates the non-date identity columns of a wide-format file.
type wideIdentity struct {
	name  int
	state int
	zip   int
}

func wideColumns(header []string) (id wideIdentity, dateCols []int) {
	id = wideIdentity{name: -1, state: -1, zip: -1}
	stateName := -1
	for i, h := range header {
		n := normalizeHeader(h)
		switch {
		case datePattern.MatchString(n):
			dateCols = append(dateCols, i)
		case n == "regionname":
			id.name = i
		case n == "statename":
			stateName = i
		case n == "state" && id.state == -1:
			id.state = i
		case n == "zip" || n == "zipcode":
			id.zip = i
		}
	}
	// Prefer the abbreviated state column; fall back to the full state name.
	if id.state == -1 {
		id.state = stateName
	}
	return id, dateCols
}

// parseWide converts wide time-series rows into market statistics. Date
// columns are assumed chronological in file order, newest last. Processing
// is capped at maxRows leading data rows.
func parseWide(header []string, rows [][]string, maxRows int, log *logger.Logger) (stats []*market.Stats, skipped int) {
	id, dateCols := wideColumns(header)

	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for i, row := range rows {
		name := cell(row, id.name)

		// Scan date columns newest to oldest, collecting up to the last
		// trailingWindow non-empty values. The first found is the current
		// value, the second the previous one.
		var recent []float64
		var lastUpdated string
		for j := len(dateCols) - 1; j >= 0 && len(recent) < trailingWindow; j-- {
			v := cleanNumber(cell(row, dateCols[j]))
			if v == nil {
				continue
			}
			if len(recent) == 0 {
				lastUpdated = normalizeHeader(header[dateCols[j]])
			}
			recent = append(recent, *v)
		}

		if len(recent) == 0 || name == "" {
			log.Warn("skipping row without current value or identity", map[string]interface{}{"row": i + 2})
			skipped++
			continue
		}

		current := recent[0]
		pct := 0.0
		if len(recent) > 1 && recent[1] > 0 {
			pct = (current - recent[1]) / recent[1] * 100
		}

		minP, maxP, sum := recent[0], recent[0], 0.0
		for _, v := range recent {
			if v < minP {
				minP = v
			}
			if v > maxP {
				maxP = v
			}
			sum += v
		}
		avg := sum / float64(len(recent))

		// Full series for charting: every positive observation in the
		// file's column order, independent of the rolling window above.
		var history []market.PricePoint
		for _, col := range dateCols {
			if v := cleanNumber(cell(row, col)); v != nil && *v > 0 {
				history = append(history, market.PricePoint{
					Date:  normalizeHeader(header[col]),
					Price: *v,
				})
			}
		}

		state := cell(row, id.state)
		displayName := name
		if state != "" {
			displayName = name + ", " + state
		}

		s := &market.Stats{
			ID:      market.Slug(displayName),
			Name:    displayName,
			City:    name,
			State:   state,
			ZipCode: cell(row, id.zip),
			SaleData: market.SaleData{
				MedianPrice:  current,
				AveragePrice: avg,
				MinPrice:     &minP,
				MaxPrice:     &maxP,
				LastUpdated:  lastUpdated,
			},
			PercentChange:    pct,
			Direction:        market.DirectionOf(pct),
			HistoricalPrices: history,
		}

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
