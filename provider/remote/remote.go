// Package remote implements the REST-backed provider for the external
// market statistics API. Remote failures are mapped onto the application
// error taxonomy (rate-limited, auth-invalid, timeout, network-unreachable,
// other) so callers can choose the right fallback without inspecting
// transport details, and a persisted monthly quota guard protects the
// free-tier call allowance.
package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/homescout/marketdata/cache"
	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/httpclient"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
	"github.com/homescout/marketdata/provider"
)

const serviceName = "market API"

// Provider fetches market statistics and property listings from the remote
// REST collaborator.
type Provider struct {
	cfg   Config
	httpc *httpclient.Client
	quota *quotaGuard
	log   *logger.Logger
}

func init() {
	provider.Register(describe(defaultMonthlyQuota), func(deps provider.Deps) (provider.Provider, error) {
		cfg, _ := deps.Configs[provider.IDRemote].(*Config)
		if cfg == nil {
			cfg = &Config{}
		}
		p, err := New(*cfg, deps.Settings, deps.Log)
		if err != nil {
			return nil, err
		}
		return provider.NewBase(p, deps.Store, deps.Base, deps.Log), nil
	})
}

// New creates the remote provider.
func New(cfg Config, settings cache.SettingsStore, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpc, err := httpclient.New(cfg.httpConfig())
	if err != nil {
		return nil, err
	}

	return &Provider{
		cfg:   cfg,
		httpc: httpc,
		quota: newQuotaGuard(settings, cfg.MonthlyQuota),
		log:   log.WithComponent("remote-provider"),
	}, nil
}

// describe builds the provider descriptor for a given monthly quota.
func describe(quota int) provider.Info {
	return provider.Info{
		ID:        provider.IDRemote,
		Name:      "Market Data API",
		RateLimit: fmt.Sprintf("%d requests/month (free tier)", quota),
		Features: provider.Features{
			MarketStats:     true,
			PropertySearch:  true,
			PropertyDetails: true,
		},
	}
}

// Info describes the remote provider.
func (p *Provider) Info() provider.Info {
	return describe(p.cfg.MonthlyQuota)
}

// IsConfigured reports whether an API key is present.
func (p *Provider) IsConfigured(context.Context) bool {
	return p.cfg.APIKey != ""
}

// QuotaUsed exposes the current month's recorded call count.
func (p *Provider) QuotaUsed(ctx context.Context) int {
	return p.quota.Used(ctx)
}

// FetchMarketStats queries the remote API for a location.
func (p *Provider) FetchMarketStats(ctx context.Context, loc market.Location) (*market.Stats, error) {
	body, err := p.call(ctx, "market-stats", map[string]string{"location": loc.Raw})
	if err != nil || body == nil {
		return nil, err
	}
	return market.DecodeWire(body)
}

// FetchProperties queries the remote API for property listings. Results
// failing the per-property gate are dropped, not surfaced.
func (p *Provider) FetchProperties(ctx context.Context, query string) ([]market.Property, error) {
	body, err := p.call(ctx, "properties", map[string]string{"query": query})
	if err != nil || body == nil {
		return nil, err
	}

	var props []market.Property
	if err := json.Unmarshal(body, &props); err != nil {
		return nil, apperrors.Validation("malformed property search payload").WithCause(err)
	}

	valid := props[:0]
	for i := range props {
		if err := market.ValidateProperty(&props[i]); err != nil {
			p.log.Warn("dropping invalid property result", map[string]interface{}{"reason": err.Error()})
			continue
		}
		valid = append(valid, props[i])
	}
	return valid, nil
}

// call performs one guarded API request. A nil body with nil error means the
// API had no data for the query (404).
func (p *Provider) call(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if !p.IsConfigured(ctx) {
		return nil, apperrors.NotConfigured(provider.IDRemote)
	}
	if !p.quota.Allow(ctx) {
		return nil, apperrors.RateLimited().
			WithDetail("monthlyQuota", p.cfg.MonthlyQuota).
			WithDetail("used", p.quota.Used(ctx))
	}

	resp, err := p.httpc.Do(ctx, httpclient.Request{Path: path, Query: query})
	if resp != nil && resp.StatusCode > 0 {
		// The request reached the API; it counts against the monthly budget
		// whatever the outcome.
		p.quota.Record(ctx)
	}
	if err != nil {
		if httpclient.IsNotFound(err) {
			return nil, nil
		}
		return nil, p.mapError(err)
	}
	return resp.Body, nil
}

// mapError converts transport classifications into the application taxonomy
// the caller's fallback logic keys off.
func (p *Provider) mapError(err error) error {
	switch {
	case httpclient.IsRateLimit(err):
		return apperrors.RateLimited().WithCause(err)
	case httpclient.IsAuth(err):
		return apperrors.AuthInvalid(serviceName).WithCause(err)
	case httpclient.IsTimeout(err):
		return apperrors.Timeout("remote fetch").WithCause(err)
	case httpclient.IsConnection(err):
		return apperrors.NetworkUnreachable(serviceName).WithCause(err)
	default:
		return apperrors.Upstream(serviceName, err)
	}
}

var _ provider.Fetcher = (*Provider)(nil)
