package cache

import (
	"context"
	"time"
)

// NoopStore is the degraded Store used when durable storage is unavailable
// (missing permissions, unwritable path). Every read misses and every write
// is acknowledged and dropped, so callers proceed as though the cache were
// simply empty.
type NoopStore struct{}

// NewNoop returns a NoopStore.
func NewNoop() *NoopStore { return &NoopStore{} }

func (*NoopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NoopStore) Remove(context.Context, string) error { return nil }

func (*NoopStore) Clear(context.Context) error { return nil }

func (*NoopStore) ClearExpired(context.Context) (int, error) { return 0, nil }

func (*NoopStore) Stats(context.Context) (Stats, error) {
	return Stats{ByCategory: map[string]int{}}, nil
}

func (*NoopStore) Age(context.Context, string) (time.Duration, bool, error) {
	return 0, false, nil
}

// Supported reports that durable storage is unavailable.
func (*NoopStore) Supported() bool { return false }

// Setting always misses.
func (*NoopStore) Setting(context.Context, string) (string, bool, error) { return "", false, nil }

// SetSetting drops the value.
func (*NoopStore) SetSetting(context.Context, string, string) error { return nil }

var (
	_ Store         = (*NoopStore)(nil)
	_ SettingsStore = (*NoopStore)(nil)
)
