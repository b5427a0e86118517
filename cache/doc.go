// Package cache implements the durable keyed record store that backs the
// data providers. Records carry a creation timestamp, a caller-supplied TTL
// and a precomputed expiry; lookups of expired records evict eagerly and
// report a miss, so the stats surface never counts stale entries.
//
// The SQLite engine (modernc.org/sqlite, pure Go) provides atomic per-record
// transactions; NoopStore is the degraded fallback when storage cannot be
// opened. A sidecar meta table persists the active provider selection and
// the remote provider's monthly quota counters.
package cache
