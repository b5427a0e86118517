// Package mock implements the synthetic data provider used when no real
// source is configured. Output is deterministic per location so repeated
// queries (and tests) see stable values, and every record satisfies the
// same validation gate as real data.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
	"github.com/homescout/marketdata/provider"
)

const historyMonths = 24

// Fetcher generates synthetic market data.
type Fetcher struct {
	log *logger.Logger
	now func() time.Time
}

// New creates the mock fetcher.
func New(log *logger.Logger) *Fetcher {
	return &Fetcher{log: log.WithComponent("mock-provider"), now: time.Now}
}

var info = provider.Info{
	ID:        provider.IDMock,
	Name:      "Sample Data",
	RateLimit: "unlimited",
	Features: provider.Features{
		MarketStats:     true,
		PropertySearch:  true,
		PropertyDetails: false,
	},
}

func init() {
	provider.Register(info, func(deps provider.Deps) (provider.Provider, error) {
		return provider.NewBase(New(deps.Log), deps.Store, deps.Base, deps.Log), nil
	})
}

// Info describes the mock provider.
func (f *Fetcher) Info() provider.Info { return info }

// IsConfigured always holds; the generator needs nothing.
func (f *Fetcher) IsConfigured(context.Context) bool { return true }

// FetchMarketStats synthesizes statistics for any location.
func (f *Fetcher) FetchMarketStats(_ context.Context, loc market.Location) (*market.Stats, error) {
	rng := rand.New(rand.NewSource(seed(loc.CacheKey())))

	median := 150_000 + rng.Float64()*600_000
	pct := rng.Float64()*24 - 12 // -12% .. +12%

	history := f.history(rng, median)
	minP, maxP := history[0].Price, history[0].Price
	var sum float64
	for _, p := range history {
		if p.Price < minP {
			minP = p.Price
		}
		if p.Price > maxP {
			maxP = p.Price
		}
		sum += p.Price
	}
	avg := sum / float64(len(history))

	name := loc.DisplayName()
	stats := &market.Stats{
		ID:      market.Slug("mock-" + name),
		Name:    name,
		City:    loc.City,
		State:   loc.State,
		ZipCode: loc.ZipCode,
		SaleData: market.SaleData{
			MedianPrice:  round(median),
			AveragePrice: round(avg),
			MinPrice:     ptr(round(minP)),
			MaxPrice:     ptr(round(maxP)),
			LastUpdated:  history[len(history)-1].Date,
		},
		PercentChange:    round2(pct),
		Direction:        market.DirectionOf(pct),
		HistoricalPrices: history,
	}
	return stats, nil
}

// history walks a random drift backwards from the current price so the
// series ends at roughly the median.
func (f *Fetcher) history(rng *rand.Rand, current float64) []market.PricePoint {
	points := make([]market.PricePoint, historyMonths)
	month := f.now().AddDate(0, -(historyMonths - 1), 0)
	price := current * (0.85 + rng.Float64()*0.1)
	for i := 0; i < historyMonths; i++ {
		drift := 1 + (rng.Float64()*0.03 - 0.01)
		price *= drift
		points[i] = market.PricePoint{
			Date:  time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Price: round(price),
		}
		month = month.AddDate(0, 1, 0)
	}
	points[historyMonths-1].Price = round(current)
	return points
}

// FetchProperties synthesizes a small result set matching the query.
func (f *Fetcher) FetchProperties(_ context.Context, query string) ([]market.Property, error) {
	loc := market.ParseLocation(query)
	rng := rand.New(rand.NewSource(seed("props:" + loc.CacheKey())))

	count := 5 + rng.Intn(8)
	props := make([]market.Property, 0, count)
	for i := 0; i < count; i++ {
		beds := float64(2 + rng.Intn(4))
		baths := 1 + float64(rng.Intn(5))/2
		sqft := 900 + rng.Float64()*2600
		props = append(props, market.Property{
			ID:         uuid.NewString(),
			Address:    fmt.Sprintf("%d %s", 100+rng.Intn(9800), streetNames[rng.Intn(len(streetNames))]),
			City:       loc.City,
			State:      strings.ToUpper(loc.State),
			ZipCode:    loc.ZipCode,
			Price:      round(120_000 + rng.Float64()*880_000),
			Bedrooms:   ptr(beds),
			Bathrooms:  ptr(baths),
			SquareFeet: ptr(round(sqft)),
		})
	}
	return props, nil
}

var streetNames = []string{
	"Maple Ave", "Oak St", "Cedar Ln", "Elm Dr", "Washington Blvd",
	"Lakeview Ter", "Hillcrest Rd", "Park Pl", "Sunset Dr", "2nd St",
}

func seed(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

func round(v float64) float64  { return float64(int64(v)) }
func round2(v float64) float64 { return float64(int64(v*100)) / 100 }

func ptr(v float64) *float64 { return &v }

var _ provider.Fetcher = (*Fetcher)(nil)
