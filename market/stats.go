package market

// Direction classifies the sign of a percent change.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// DirectionOf derives the direction from the sign of a percent change.
func DirectionOf(percentChange float64) Direction {
	switch {
	case percentChange > 0:
		return DirectionUp
	case percentChange < 0:
		return DirectionDown
	default:
		return DirectionNeutral
	}
}

// PricePoint is one historical price observation.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// SaleData is the canonical nested pricing block. Legacy payloads with flat
// top-level price fields are normalized into this shape at the ingestion
// boundary; nothing deeper in the pipeline branches on payload shape.
type SaleData struct {
	MedianPrice   float64  `json:"medianPrice"`
	AveragePrice  float64  `json:"averagePrice"`
	MinPrice      *float64 `json:"minPrice,omitempty"`
	MaxPrice      *float64 `json:"maxPrice,omitempty"`
	PricePerSqft  *float64 `json:"pricePerSquareFoot,omitempty"`
	SquareFootage *float64 `json:"squareFootage,omitempty"`
	DaysOnMarket  *float64 `json:"daysOnMarket,omitempty"`
	LastUpdated   string   `json:"lastUpdatedDate,omitempty"`
}

// Stats is the provider-neutral market statistics record. It is produced
// fresh by a provider's raw fetch, validated, then cached; it is never
// mutated after creation; a refresh overwrites the cached record wholesale.
type Stats struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`

	SaleData SaleData `json:"saleData"`

	PercentChange float64   `json:"percentChange"`
	Direction     Direction `json:"direction,omitempty"`

	// HistoricalPrices is the full time series for charting, ordered by
	// ascending date.
	HistoricalPrices []PricePoint `json:"historicalPrices,omitempty"`
}

// BestPrice returns the median price, falling back to the average.
func (s *Stats) BestPrice() float64 {
	if s.SaleData.MedianPrice > 0 {
		return s.SaleData.MedianPrice
	}
	return s.SaleData.AveragePrice
}

// Property is a single property search result.
type Property struct {
	ID         string   `json:"id" validate:"required"`
	Address    string   `json:"address"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	ZipCode    string   `json:"zipCode,omitempty"`
	Price      float64  `json:"price"`
	Bedrooms   *float64 `json:"bedrooms,omitempty"`
	Bathrooms  *float64 `json:"bathrooms,omitempty"`
	SquareFeet *float64 `json:"squareFeet,omitempty"`
	URL        string   `json:"url,omitempty"`
}
