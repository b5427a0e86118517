package market

import (
	"encoding/json"

	apperrors "github.com/homescout/marketdata/errors"
)

// wireStats accepts both the current payload shape (nested saleData block)
// and the legacy compatibility form with flat top-level price fields.
type wireStats struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`

	SaleData *SaleData `json:"saleData"`

	// Legacy flat fields.
	MedianPrice     float64  `json:"medianPrice"`
	AveragePrice    float64  `json:"averagePrice"`
	MinPrice        *float64 `json:"minPrice"`
	MaxPrice        *float64 `json:"maxPrice"`
	LastUpdatedDate string   `json:"lastUpdatedDate"`

	PercentChange    *float64     `json:"percentChange"`
	HistoricalPrices []PricePoint `json:"historicalPrices"`
}

// DecodeWire decodes a remote payload into the canonical Stats shape.
// Legacy flat price fields are folded into the saleData block here, at the
// ingestion boundary, so no later stage branches on payload shape.
func DecodeWire(data []byte) (*Stats, error) {
	var w wireStats
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, apperrors.Validation("malformed market stats payload").WithCause(err)
	}

	s := &Stats{
		ID:               w.ID,
		Name:             w.Name,
		City:             w.City,
		State:            w.State,
		ZipCode:          w.ZipCode,
		HistoricalPrices: w.HistoricalPrices,
	}

	if w.SaleData != nil && (w.SaleData.MedianPrice > 0 || w.SaleData.AveragePrice > 0) {
		s.SaleData = *w.SaleData
	} else {
		s.SaleData = SaleData{
			MedianPrice:  w.MedianPrice,
			AveragePrice: w.AveragePrice,
			MinPrice:     w.MinPrice,
			MaxPrice:     w.MaxPrice,
			LastUpdated:  w.LastUpdatedDate,
		}
	}

	if w.PercentChange != nil {
		s.PercentChange = *w.PercentChange
	}
	s.Direction = DirectionOf(s.PercentChange)

	if s.Name == "" {
		loc := Location{City: s.City, State: s.State, ZipCode: s.ZipCode}
		s.Name = loc.DisplayName()
	}
	if s.ID == "" {
		s.ID = Slug(s.Name)
	}

	return s, nil
}
