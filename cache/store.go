package cache

import (
	"context"
	"time"
)

// TTLNever marks a record that never expires. Used for bulk-ingested
// reference datasets that the user explicitly manages.
const TTLNever time.Duration = 0

// Store is the durable keyed record store behind every provider. A record is
// live until its TTL elapses; reading an expired record evicts it eagerly and
// reports a miss, so Stats never counts stale entries.
//
// Implementations return errors for observability, but callers are expected
// to treat any error as a miss (reads) or a dropped write; the cache layer
// must never block the data path.
type Store interface {
	// Get returns the payload for key, or ok=false on a miss. A matching but
	// expired record is deleted before the miss is reported.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)

	// Set upserts a record at key with storedAt=now and expiresAt=now+ttl.
	// A ttl <= 0 (TTLNever) stores the record without expiry.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Remove deletes the record at key, if any.
	Remove(ctx context.Context, key string) error

	// Clear deletes all records.
	Clear(ctx context.Context) error

	// ClearExpired deletes every record whose expiry has passed and returns
	// the number removed. Safe to call concurrently with Get/Set.
	ClearExpired(ctx context.Context) (int, error)

	// Stats summarizes live records for the observability surface.
	Stats(ctx context.Context) (Stats, error)

	// Age returns how long ago the live record at key was stored.
	Age(ctx context.Context, key string) (time.Duration, bool, error)

	// Supported reports whether durable storage is actually available.
	// When false, reads always miss and writes are accepted and dropped.
	Supported() bool
}

// Stats summarizes the live contents of a Store.
type Stats struct {
	Count            int            `json:"count"`
	TotalPayloadSize int64          `json:"totalPayloadSize"`
	Keys             []string       `json:"keys"`
	ByCategory       map[string]int `json:"byCategory"`
}

// SettingsStore persists small key/value settings (active provider id,
// remote quota counters) alongside the cache records.
type SettingsStore interface {
	Setting(ctx context.Context, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, key, value string) error
}
