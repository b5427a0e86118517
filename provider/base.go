package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/homescout/marketdata/cache"
	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
)

// BaseConfig configures the read-through caching decorator.
type BaseConfig struct {
	// StatsTTL is the lifetime of cached market statistics. Defaults to 24h.
	StatsTTL time.Duration `yaml:"stats_ttl" mapstructure:"stats_ttl"`
	// SearchTTL is the lifetime of cached search results. Defaults to 1h.
	SearchTTL time.Duration `yaml:"search_ttl" mapstructure:"search_ttl"`
	// DedupeInflight collapses concurrent identical fetches into one
	// underlying call. Off by default: duplicate in-flight fetches are an
	// accepted inefficiency, and the second write overwrites the first with
	// equivalent data.
	DedupeInflight bool `yaml:"dedupe_inflight" mapstructure:"dedupe_inflight"`
}

// ApplyDefaults applies default TTLs.
func (c *BaseConfig) ApplyDefaults() {
	if c.StatsTTL <= 0 {
		c.StatsTTL = 24 * time.Hour
	}
	if c.SearchTTL <= 0 {
		c.SearchTTL = time.Hour
	}
}

// Base wraps a Fetcher with read-through caching keyed by provider id,
// operation kind and normalized query. Results are written back only after
// passing the validation gate, so an empty or invalid fetch can never poison
// the cache. Fetch errors propagate to the caller unchanged; cache-layer
// errors are logged and treated as misses.
type Base struct {
	fetcher Fetcher
	store   cache.Store
	cfg     BaseConfig
	log     *logger.Logger
	metrics *metrics
	group   *singleflight.Group
}

// NewBase creates the caching decorator around a concrete fetcher.
func NewBase(fetcher Fetcher, store cache.Store, cfg BaseConfig, log *logger.Logger) *Base {
	cfg.ApplyDefaults()
	if store == nil {
		store = cache.NewNoop()
	}
	b := &Base{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		log:     log.WithComponent("provider").WithFields(map[string]interface{}{logger.FieldProvider: fetcher.Info().ID}),
		metrics: newMetrics(),
	}
	if cfg.DedupeInflight {
		b.group = &singleflight.Group{}
	}
	return b
}

// Info returns the wrapped provider's descriptor.
func (b *Base) Info() Info { return b.fetcher.Info() }

// IsConfigured delegates to the wrapped provider.
func (b *Base) IsConfigured(ctx context.Context) bool { return b.fetcher.IsConfigured(ctx) }

// WaitForDataLoad awaits the wrapped fetcher's constructor-time load. It
// returns immediately for fetchers that have no asynchronous load.
func (b *Base) WaitForDataLoad(ctx context.Context) error {
	if bl, ok := b.fetcher.(BulkLoader); ok {
		return bl.WaitForDataLoad(ctx)
	}
	return nil
}

// LoadDataset forwards an uploaded dataset to the wrapped fetcher when it
// accepts uploads.
func (b *Base) LoadDataset(ctx context.Context, data []byte) (DatasetSummary, error) {
	if dl, ok := b.fetcher.(DatasetLoader); ok {
		return dl.LoadDataset(ctx, data)
	}
	return DatasetSummary{}, apperrors.Unsupported("dataset upload", b.fetcher.Info().ID)
}

// statsKey derives the cache key for a market-stats query.
func (b *Base) statsKey(loc market.Location) string {
	return fmt.Sprintf("%s:market-stats:%s", b.fetcher.Info().ID, loc.CacheKey())
}

// searchKey derives the cache key for a property search query.
func (b *Base) searchKey(query string) string {
	return fmt.Sprintf("%s:search:%s", b.fetcher.Info().ID, strings.ToLower(query))
}

// GetMarketStats reads through the cache. forceRefresh bypasses the cache
// read but still writes the fresh result back, refreshing its TTL.
func (b *Base) GetMarketStats(ctx context.Context, location string, forceRefresh bool) (*market.Stats, error) {
	loc := market.ParseLocation(location)
	key := b.statsKey(loc)
	id := b.fetcher.Info().ID

	if !forceRefresh {
		if stats := b.cachedStats(ctx, key); stats != nil {
			b.metrics.recordHit(ctx, id, opMarketStats)
			return stats, nil
		}
		b.metrics.recordMiss(ctx, id, opMarketStats)
	}

	stats, err := b.fetchStats(ctx, key, loc)
	if err != nil {
		b.metrics.recordFetchError(ctx, id, opMarketStats)
		return nil, err
	}
	b.metrics.recordFetch(ctx, id, opMarketStats)
	if stats == nil {
		return nil, nil
	}

	if err := market.Validate(stats); err != nil {
		// Returned to the caller but never cached.
		b.log.Warn("fetched stats failed validation gate, not caching", map[string]interface{}{
			logger.FieldCacheKey: key,
			"reason":             err.Error(),
		})
		return stats, nil
	}

	b.writeBack(ctx, key, stats, b.cfg.StatsTTL)
	return stats, nil
}

func (b *Base) fetchStats(ctx context.Context, key string, loc market.Location) (*market.Stats, error) {
	if b.group == nil {
		return b.fetcher.FetchMarketStats(ctx, loc)
	}
	v, err, _ := b.group.Do(key, func() (any, error) {
		return b.fetcher.FetchMarketStats(ctx, loc)
	})
	if err != nil {
		return nil, err
	}
	stats, _ := v.(*market.Stats)
	return stats, nil
}

// cachedStats returns the live cached record at key, or nil on miss. A
// record that no longer unmarshals is removed and treated as a miss.
func (b *Base) cachedStats(ctx context.Context, key string) *market.Stats {
	payload, ok, err := b.store.Get(ctx, key)
	if err != nil {
		b.log.Debug("cache read failed, treating as miss", map[string]interface{}{
			logger.FieldCacheKey: key, "error": err.Error(),
		})
		return nil
	}
	if !ok {
		return nil
	}
	var stats market.Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		b.log.Warn("corrupt cache payload, evicting", map[string]interface{}{logger.FieldCacheKey: key})
		_ = b.store.Remove(ctx, key)
		return nil
	}
	return &stats
}

// SearchProperties fails fast when the provider's feature bit is unset,
// otherwise follows the same read-through pattern as GetMarketStats. Only
// non-empty result sets are cached.
func (b *Base) SearchProperties(ctx context.Context, query string, forceRefresh bool) ([]market.Property, error) {
	info := b.fetcher.Info()
	if !info.Features.PropertySearch {
		return nil, apperrors.Unsupported("property search", info.ID)
	}

	key := b.searchKey(query)

	if !forceRefresh {
		if payload, ok, err := b.store.Get(ctx, key); err == nil && ok {
			var props []market.Property
			if err := json.Unmarshal(payload, &props); err == nil {
				b.metrics.recordHit(ctx, info.ID, opSearch)
				return props, nil
			}
			_ = b.store.Remove(ctx, key)
		}
		b.metrics.recordMiss(ctx, info.ID, opSearch)
	}

	props, err := b.fetcher.FetchProperties(ctx, query)
	if err != nil {
		b.metrics.recordFetchError(ctx, info.ID, opSearch)
		return nil, err
	}
	b.metrics.recordFetch(ctx, info.ID, opSearch)

	if len(props) > 0 {
		b.writeBack(ctx, key, props, b.cfg.SearchTTL)
	}
	return props, nil
}

// writeBack serializes and stores a validated result. Cache write failures
// are logged and swallowed; the data path never depends on the cache.
func (b *Base) writeBack(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		b.log.Error("serialize cache payload", map[string]interface{}{logger.FieldCacheKey: key, "error": err.Error()})
		return
	}
	if err := b.store.Set(ctx, key, payload, ttl); err != nil {
		b.log.Warn("cache write failed", map[string]interface{}{logger.FieldCacheKey: key, "error": err.Error()})
	}
}

var _ Provider = (*Base)(nil)
