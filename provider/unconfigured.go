package provider

import (
	"context"

	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/market"
)

// unconfiguredFetcher is the inert last-resort fetcher used when no factory
// is registered at all. It reports itself unconfigured and answers nothing.
type unconfiguredFetcher struct{}

func (unconfiguredFetcher) Info() Info {
	return Info{ID: "none", Name: "Unconfigured"}
}

func (unconfiguredFetcher) IsConfigured(context.Context) bool { return false }

func (unconfiguredFetcher) FetchMarketStats(context.Context, market.Location) (*market.Stats, error) {
	return nil, apperrors.NotConfigured("none")
}

func (unconfiguredFetcher) FetchProperties(context.Context, string) ([]market.Property, error) {
	return nil, apperrors.NotConfigured("none")
}
