package provider

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	opMarketStats = "market-stats"
	opSearch      = "search"
)

// metrics records cache and fetch counters through the otel metric API.
// Without a configured meter provider these are no-ops.
type metrics struct {
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	fetches     metric.Int64Counter
	fetchErrors metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter("github.com/homescout/marketdata/provider")

	hits, _ := meter.Int64Counter("marketdata.cache.hits",
		metric.WithDescription("Cache hits by provider and operation"))
	misses, _ := meter.Int64Counter("marketdata.cache.misses",
		metric.WithDescription("Cache misses by provider and operation"))
	fetches, _ := meter.Int64Counter("marketdata.fetches",
		metric.WithDescription("Underlying fetches by provider and operation"))
	fetchErrors, _ := meter.Int64Counter("marketdata.fetch.errors",
		metric.WithDescription("Failed underlying fetches by provider and operation"))

	return &metrics{hits: hits, misses: misses, fetches: fetches, fetchErrors: fetchErrors}
}

func attrs(providerID, operation string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("provider", providerID),
		attribute.String("operation", operation),
	)
}

func (m *metrics) recordHit(ctx context.Context, providerID, operation string) {
	m.hits.Add(ctx, 1, attrs(providerID, operation))
}

func (m *metrics) recordMiss(ctx context.Context, providerID, operation string) {
	m.misses.Add(ctx, 1, attrs(providerID, operation))
}

func (m *metrics) recordFetch(ctx context.Context, providerID, operation string) {
	m.fetches.Add(ctx, 1, attrs(providerID, operation))
}

func (m *metrics) recordFetchError(ctx context.Context, providerID, operation string) {
	m.fetchErrors.Add(ctx, 1, attrs(providerID, operation))
}
