// Package provider defines the data-provider contract and the read-through
// caching decorator shared by every variant (mock, csv, remote).
//
// Concrete providers implement Fetcher; Base wraps a Fetcher with cache
// reads keyed by provider id, operation and normalized query, a validation
// gate before write-back, and otel counters. The factory registry resolves
// the active variant from the persisted user selection (falling back to the
// configured default), and guarantees a working provider even for unknown
// ids by substituting the mock variant.
//
// Provider-specific behavior is exposed through optional capability
// interfaces (BulkLoader) rather than concrete-type inspection.
package provider
