package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/homescout/marketdata/logger"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := Config{Path: filepath.Join(t.TempDir(), "cache.db")}
	s, err := Open(cfg, logger.New(&logger.Config{Level: "error", Format: "json"}, "test"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "mock:market-stats:48201", []byte(`{"id":"x"}`), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	payload, ok, err := s.Get(ctx, "mock:market-stats:48201")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if string(payload) != `{"id":"x"}` {
		t.Errorf("unexpected payload: %s", payload)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := testStore(t)

	_, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected miss for absent key")
	}
}

func TestSetIsIdempotentUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
			t.Fatalf("Set %d failed: %v", i, err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Count != 1 {
		t.Errorf("expected 1 record after repeated writes, got %d", stats.Count)
	}
}

func TestSetOverwritesRecordWholesale(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("old"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("new"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	payload, ok, _ := s.Get(ctx, "k")
	if !ok || string(payload) != "new" {
		t.Errorf("expected overwritten payload 'new', got %q (hit=%v)", payload, ok)
	}
}

func TestExpiryBoundary(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	t.Run("live just before expiry", func(t *testing.T) {
		s.now = func() time.Time { return base.Add(time.Minute - time.Millisecond) }
		if _, ok, _ := s.Get(ctx, "k"); !ok {
			t.Error("expected hit just before expiry")
		}
	})

	t.Run("miss at exact expiry instant", func(t *testing.T) {
		s.now = func() time.Time { return base.Add(time.Minute) }
		if _, ok, _ := s.Get(ctx, "k"); ok {
			t.Error("expected miss at expiry instant")
		}
	})
}

func TestExpiredGetEvictsEagerly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected miss for expired record")
	}

	// The expired record must be gone, not just filtered.
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected eager eviction to delete the row, found %d rows", count)
	}
}

func TestTTLNeverDoesNotExpire(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	if err := s.Set(ctx, "csv:dataset:markets", []byte("data"), TTLNever); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s.now = func() time.Time { return base.Add(10 * 365 * 24 * time.Hour) }
	if _, ok, _ := s.Get(ctx, "csv:dataset:markets"); !ok {
		t.Error("record stored with TTLNever must not expire")
	}

	n, err := s.ClearExpired(ctx)
	if err != nil {
		t.Fatalf("ClearExpired failed: %v", err)
	}
	if n != 0 {
		t.Errorf("ClearExpired must not remove never-expiring records, removed %d", n)
	}
}

func TestClearExpired(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	if err := s.Set(ctx, "short", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "long", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	n, err := s.ClearExpired(ctx)
	if err != nil {
		t.Fatalf("ClearExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if _, ok, _ := s.Get(ctx, "long"); !ok {
		t.Error("unexpired record should survive ClearExpired")
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, []byte("v"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("removed key should miss")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, _ := s.Stats(ctx)
	if stats.Count != 0 {
		t.Errorf("expected empty store after Clear, got %d records", stats.Count)
	}
}

func TestStatsCountsLiveRecordsByCategory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }

	records := map[string]time.Duration{
		"mock:market-stats:48201":     time.Hour,
		"mock:market-stats:austin-tx": time.Hour,
		"mock:search:detroit":         time.Hour,
		"mock:market-stats:expired":   time.Minute,
	}
	for k, ttl := range records {
		if err := s.Set(ctx, k, []byte("payload"), ttl); err != nil {
			t.Fatal(err)
		}
	}

	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.Count != 3 {
		t.Errorf("expected 3 live records, got %d", stats.Count)
	}
	if stats.ByCategory[string(CategoryMarketStats)] != 2 {
		t.Errorf("expected 2 market-stats records, got %d", stats.ByCategory[string(CategoryMarketStats)])
	}
	if stats.ByCategory[string(CategorySearch)] != 1 {
		t.Errorf("expected 1 search record, got %d", stats.ByCategory[string(CategorySearch)])
	}
	if stats.TotalPayloadSize != int64(3*len("payload")) {
		t.Errorf("unexpected payload size sum: %d", stats.TotalPayloadSize)
	}
	if len(stats.Keys) != 3 {
		t.Errorf("expected 3 keys, got %v", stats.Keys)
	}
}

func TestAge(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	if err := s.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base.Add(10 * time.Minute) }
	age, ok, err := s.Age(ctx, "k")
	if err != nil {
		t.Fatalf("Age failed: %v", err)
	}
	if !ok {
		t.Fatal("expected live record")
	}
	if age != 10*time.Minute {
		t.Errorf("expected age 10m, got %v", age)
	}

	if _, ok, _ := s.Age(ctx, "absent"); ok {
		t.Error("expected ok=false for absent key")
	}
}

func TestSettingsRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, ok, _ := s.Setting(ctx, "active_provider"); ok {
		t.Fatal("expected no setting initially")
	}

	if err := s.SetSetting(ctx, "active_provider", "csv"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := s.SetSetting(ctx, "active_provider", "remote"); err != nil {
		t.Fatalf("SetSetting upsert failed: %v", err)
	}

	v, ok, err := s.Setting(ctx, "active_provider")
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if !ok || v != "remote" {
		t.Errorf("expected persisted value 'remote', got %q (ok=%v)", v, ok)
	}
}

func TestNoopStore(t *testing.T) {
	s := NewNoop()
	ctx := context.Background()

	if s.Supported() {
		t.Error("noop store must report unsupported")
	}
	if err := s.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("noop Set must not fail: %v", err)
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Errorf("noop Get must always miss cleanly, got ok=%v err=%v", ok, err)
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		key  string
		want Category
	}{
		{"mock:market-stats:48201", CategoryMarketStats},
		{"remote:search:detroit", CategorySearch},
		{"remote:property:123", CategoryProperty},
		{"csv:dataset:markets", CategoryOther},
		{"weird", CategoryOther},
	}
	for _, tc := range tests {
		if got := CategoryOf(tc.key); got != tc.want {
			t.Errorf("CategoryOf(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}
