package provider

import (
	"context"

	"github.com/homescout/marketdata/market"
)

// Provider ids form a closed set; the persisted user selection is one of these.
const (
	IDMock   = "mock"
	IDCSV    = "csv"
	IDRemote = "remote"
)

// Features is the capability bitset advertised by a provider.
type Features struct {
	MarketStats     bool `json:"marketStats"`
	PropertySearch  bool `json:"propertySearch"`
	PropertyDetails bool `json:"propertyDetails"`
}

// Info is the static descriptor for a provider variant. It is never persisted.
type Info struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	RateLimit string   `json:"rateLimit,omitempty"`
	Features  Features `json:"features"`
}

// Provider is the cached surface the application consumes. GetMarketStats
// and SearchProperties read through the cache unless forceRefresh is set,
// which always triggers a fresh fetch and rewrites the cached record.
type Provider interface {
	Info() Info

	// IsConfigured reports whether the provider has the credentials or data
	// required to answer queries. A false result is a configuration state,
	// not an error.
	IsConfigured(ctx context.Context) bool

	// GetMarketStats resolves statistics for a location query (5-digit ZIP
	// or "City, State"). A nil result with nil error means no data exists
	// for the location.
	GetMarketStats(ctx context.Context, location string, forceRefresh bool) (*market.Stats, error)

	// SearchProperties fails with an unsupported-operation error when the
	// provider's PropertySearch feature bit is unset.
	SearchProperties(ctx context.Context, query string, forceRefresh bool) ([]market.Property, error)
}

// Fetcher is the raw-fetch contract concrete providers implement. The Base
// decorator wraps a Fetcher with read-through caching and the validation
// gate; fetch errors pass through it unchanged.
type Fetcher interface {
	Info() Info
	IsConfigured(ctx context.Context) bool
	FetchMarketStats(ctx context.Context, loc market.Location) (*market.Stats, error)
	FetchProperties(ctx context.Context, query string) ([]market.Property, error)
}

// BulkLoader is an optional capability for providers that load a dataset
// asynchronously at construction time. Callers that need the data ready
// (rather than a miss) check for this capability and await it, never by
// inspecting the concrete type.
type BulkLoader interface {
	// WaitForDataLoad blocks until the constructor-time load completes or
	// ctx is done, and returns the load error if the load failed.
	WaitForDataLoad(ctx context.Context) error
}

// DatasetSummary reports the outcome of a dataset upload.
type DatasetSummary struct {
	Dialect  string `json:"dialect"`
	Ingested int    `json:"ingested"`
	Skipped  int    `json:"skipped"`
}

// DatasetLoader is an optional capability for providers that accept
// user-supplied dataset uploads.
type DatasetLoader interface {
	LoadDataset(ctx context.Context, data []byte) (DatasetSummary, error)
}
