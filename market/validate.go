package market

import (
	"math"

	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/validation"
)

// maxSanePrice is the sanity bound on any price field; values at or above it
// are treated as data corruption, not real listings.
const maxSanePrice = 100_000_000

// Validate is the gate every Stats record must pass before it is trusted,
// cached, or surfaced. It checks identity, price sanity and percent-change
// bounds, and fills in the direction classification when unset.
func Validate(s *Stats) error {
	if s == nil {
		return apperrors.Validation("market stats record is nil")
	}
	if err := validation.Validate(s); err != nil {
		return err
	}

	price := s.BestPrice()
	if price <= 0 {
		return apperrors.Validation("market stats must carry a positive price").
			WithDetail("id", s.ID)
	}
	if price >= maxSanePrice {
		return apperrors.Validation("market stats price exceeds sanity bound").
			WithDetail("id", s.ID).WithDetail("price", price)
	}
	if math.Abs(s.PercentChange) >= 100 {
		return apperrors.Validation("percent change out of range").
			WithDetail("id", s.ID).WithDetail("percentChange", s.PercentChange)
	}

	if s.Direction == "" {
		s.Direction = DirectionOf(s.PercentChange)
	}
	return nil
}

// ValidateProperty gates a property search result.
func ValidateProperty(p *Property) error {
	if p == nil {
		return apperrors.Validation("property record is nil")
	}
	if err := validation.Validate(p); err != nil {
		return err
	}
	if p.Price <= 0 || p.Price >= maxSanePrice {
		return apperrors.Validation("property price out of range").WithDetail("id", p.ID)
	}
	return nil
}
