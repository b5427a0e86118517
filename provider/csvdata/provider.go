// Package csvdata implements the CSV-backed provider: dialect auto-detection
// (flat records vs ZHVI-style wide time series), row normalization into the
// shared market-statistics shape, and a constructor-time async load of the
// previously ingested dataset with an awaitable handle.
package csvdata

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/homescout/marketdata/cache"
	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/httpclient"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
	"github.com/homescout/marketdata/provider"
)

// datasetCacheKey stores the pre-parsed market list. It lives outside the
// per-location namespaces and never expires; the user manages it explicitly.
const datasetCacheKey = "csv:dataset:markets"

// ProgressFunc receives fractional download progress in [0,1].
type ProgressFunc func(fraction float64)

// Provider serves market statistics from an ingested CSV dataset held in
// memory and persisted (pre-parsed) in the cache store.
type Provider struct {
	cfg   Config
	store cache.Store
	log   *logger.Logger
	httpc *httpclient.Client

	mu      sync.RWMutex
	byKey   map[string]*market.Stats
	markets []*market.Stats
	loadErr error

	loaded chan struct{}
}

var info = provider.Info{
	ID:        provider.IDCSV,
	Name:      "CSV Dataset",
	RateLimit: "local data, unlimited",
	Features: provider.Features{
		MarketStats: true,
	},
}

func init() {
	provider.Register(info, func(deps provider.Deps) (provider.Provider, error) {
		cfg, _ := deps.Configs[provider.IDCSV].(*Config)
		if cfg == nil {
			cfg = &Config{}
		}
		p, err := New(*cfg, deps.Store, deps.Log)
		if err != nil {
			return nil, err
		}
		return provider.NewBase(p, deps.Store, deps.Base, deps.Log), nil
	})
}

// New creates the CSV provider and kicks off the asynchronous dataset load:
// first the pre-parsed market list from the cache store, then, when absent
// and a default dataset URL is configured, a streamed download and parse.
// Use WaitForDataLoad to await completion.
func New(cfg Config, store cache.Store, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if store == nil {
		store = cache.NewNoop()
	}

	httpc, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		cfg:    cfg,
		store:  store,
		log:    log.WithComponent("csv-provider"),
		httpc:  httpc,
		byKey:  make(map[string]*market.Stats),
		loaded: make(chan struct{}),
	}

	go p.load(context.Background())
	return p, nil
}

// load restores the dataset, preferring the pre-parsed cached list over
// re-downloading and re-parsing the raw default dataset.
func (p *Provider) load(ctx context.Context) {
	defer close(p.loaded)

	if payload, ok, err := p.store.Get(ctx, datasetCacheKey); err == nil && ok {
		var markets []*market.Stats
		if err := json.Unmarshal(payload, &markets); err == nil && len(markets) > 0 {
			p.index(markets)
			p.log.Info("restored dataset from cache", map[string]interface{}{"markets": len(markets)})
			return
		}
		p.log.Warn("cached dataset unreadable, re-ingesting")
		_ = p.store.Remove(ctx, datasetCacheKey)
	}

	if p.cfg.DatasetURL == "" {
		return
	}

	data, err := p.httpc.Download(ctx, p.cfg.DatasetURL, func(received, total int64) {
		if p.cfg.OnProgress != nil && total > 0 {
			p.cfg.OnProgress(float64(received) / float64(total))
		}
	})
	if err != nil {
		p.setLoadErr(err)
		p.log.Error("default dataset download failed", map[string]interface{}{"error": err.Error()})
		return
	}

	result, err := Ingest(data, p.cfg.MaxWideRows, p.log)
	if err != nil {
		p.setLoadErr(err)
		return
	}
	p.index(result.Markets)
	p.persist(ctx, result.Markets)
}

// LoadDataset ingests a user-supplied CSV file, replacing the current
// dataset in memory and in the cache store.
func (p *Provider) LoadDataset(ctx context.Context, data []byte) (provider.DatasetSummary, error) {
	result, err := Ingest(data, p.cfg.MaxWideRows, p.log)
	if err != nil {
		return provider.DatasetSummary{}, err
	}
	p.index(result.Markets)
	p.persist(ctx, result.Markets)
	return provider.DatasetSummary{
		Dialect:  result.Dialect.String(),
		Ingested: result.Ingested,
		Skipped:  result.Skipped,
	}, nil
}

// persist writes the pre-parsed market list back with no expiry.
func (p *Provider) persist(ctx context.Context, markets []*market.Stats) {
	payload, err := json.Marshal(markets)
	if err != nil {
		p.log.Error("serialize dataset", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := p.store.Set(ctx, datasetCacheKey, payload, cache.TTLNever); err != nil {
		p.log.Warn("persist dataset failed", map[string]interface{}{"error": err.Error()})
	}
}

func (p *Provider) setLoadErr(err error) {
	p.mu.Lock()
	p.loadErr = err
	p.mu.Unlock()
}

// index builds the lookup table. Markets are reachable by ZIP code and by
// the lowercased "city, state" form. Installing a dataset clears any earlier
// load failure, so a successful upload recovers a provider whose default
// download failed.
func (p *Provider) index(markets []*market.Stats) {
	byKey := make(map[string]*market.Stats, len(markets)*2)
	for _, m := range markets {
		if m.ZipCode != "" {
			byKey[m.ZipCode] = m
		}
		byKey[strings.ToLower(m.Name)] = m
		if m.City != "" && m.State != "" {
			byKey[strings.ToLower(m.City+", "+m.State)] = m
		}
	}

	p.mu.Lock()
	p.byKey = byKey
	p.markets = markets
	p.loadErr = nil
	p.mu.Unlock()
}

// WaitForDataLoad blocks until the constructor-time load finishes. It is the
// BulkLoader capability hook that lets callers avoid racing a query against
// the asynchronous load.
func (p *Provider) WaitForDataLoad(ctx context.Context) error {
	select {
	case <-p.loaded:
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.loadErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info describes the CSV provider. Property search is not supported; the
// dataset carries aggregate market rows only.
func (p *Provider) Info() provider.Info { return info }

// IsConfigured reports whether a dataset has finished loading.
func (p *Provider) IsConfigured(context.Context) bool {
	select {
	case <-p.loaded:
	default:
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.markets) > 0
}

// FetchMarketStats looks a location up in the loaded dataset. It waits for
// the constructor-time load (bounded by ctx) before answering.
func (p *Provider) FetchMarketStats(ctx context.Context, loc market.Location) (*market.Stats, error) {
	if err := p.WaitForDataLoad(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if loc.IsZip() {
		return p.byKey[loc.ZipCode], nil
	}
	if m := p.byKey[strings.ToLower(loc.DisplayName())]; m != nil {
		return m, nil
	}
	// Fall back to a city-only scan so "Detroit" still matches "Detroit, MI".
	city := strings.ToLower(loc.City)
	for _, m := range p.markets {
		if strings.ToLower(m.City) == city {
			return m, nil
		}
	}
	return nil, nil
}

// FetchProperties is unsupported; the feature bit is unset and the caching
// layer fails fast before reaching this.
func (p *Provider) FetchProperties(context.Context, string) ([]market.Property, error) {
	return nil, apperrors.Unsupported("property search", provider.IDCSV)
}

var (
	_ provider.Fetcher       = (*Provider)(nil)
	_ provider.BulkLoader    = (*Provider)(nil)
	_ provider.DatasetLoader = (*Provider)(nil)
)
