package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/homescout/marketdata/cache"
	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
)

type stubFetcher struct {
	info       Info
	stats      *market.Stats
	statsErr   error
	props      []market.Property
	propsErr   error
	statsCalls int
	propCalls  int
}

func (s *stubFetcher) Info() Info                        { return s.info }
func (s *stubFetcher) IsConfigured(context.Context) bool { return true }

func (s *stubFetcher) FetchMarketStats(context.Context, market.Location) (*market.Stats, error) {
	s.statsCalls++
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	if s.stats == nil {
		return nil, nil
	}
	clone := *s.stats
	return &clone, nil
}

func (s *stubFetcher) FetchProperties(context.Context, string) ([]market.Property, error) {
	s.propCalls++
	return s.props, s.propsErr
}

func testLog() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json"}, "test")
}

func testBase(t *testing.T, f Fetcher) (*Base, *cache.SQLiteStore) {
	t.Helper()
	store, err := cache.Open(cache.Config{Path: filepath.Join(t.TempDir(), "cache.db")}, testLog())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewBase(f, store, BaseConfig{}, testLog()), store
}

func goodStats() *market.Stats {
	return &market.Stats{
		ID:            "detroit-mi",
		Name:          "Detroit, MI",
		SaleData:      market.SaleData{MedianPrice: 245_000},
		PercentChange: 1.2,
	}
}

func fetcherInfo() Info {
	return Info{ID: "stub", Name: "Stub", Features: Features{MarketStats: true, PropertySearch: true}}
}

func TestGetMarketStatsColdThenWarm(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo(), stats: goodStats()}
	b, _ := testBase(t, f)
	ctx := context.Background()

	got, err := b.GetMarketStats(ctx, "Detroit, MI", false)
	if err != nil {
		t.Fatalf("cold read failed: %v", err)
	}
	if got == nil || got.ID != "detroit-mi" {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if f.statsCalls != 1 {
		t.Fatalf("cold read should fetch exactly once, fetched %d times", f.statsCalls)
	}

	got2, err := b.GetMarketStats(ctx, "Detroit, MI", false)
	if err != nil {
		t.Fatalf("warm read failed: %v", err)
	}
	if got2 == nil || got2.SaleData.MedianPrice != got.SaleData.MedianPrice {
		t.Fatalf("warm read returned different data: %+v", got2)
	}
	if f.statsCalls != 1 {
		t.Errorf("warm read must not fetch, fetched %d times", f.statsCalls)
	}
}

func TestGetMarketStatsCaseInsensitiveKey(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo(), stats: goodStats()}
	b, _ := testBase(t, f)
	ctx := context.Background()

	if _, err := b.GetMarketStats(ctx, "Detroit, MI", false); err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetMarketStats(ctx, "detroit, mi", false); err != nil {
		t.Fatal(err)
	}
	if f.statsCalls != 1 {
		t.Errorf("differently cased queries must share one cache entry, fetched %d times", f.statsCalls)
	}
}

func TestForceRefreshBypassesReadButWritesBack(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo(), stats: goodStats()}
	b, store := testBase(t, f)
	ctx := context.Background()

	if _, err := b.GetMarketStats(ctx, "48201", false); err != nil {
		t.Fatal(err)
	}

	f.stats.SaleData.MedianPrice = 300_000
	got, err := b.GetMarketStats(ctx, "48201", true)
	if err != nil {
		t.Fatal(err)
	}
	if f.statsCalls != 2 {
		t.Errorf("forceRefresh must fetch, fetched %d times", f.statsCalls)
	}
	if got.SaleData.MedianPrice != 300_000 {
		t.Errorf("expected fresh value, got %v", got.SaleData.MedianPrice)
	}

	// The refreshed value replaced the cached record.
	if _, err := b.GetMarketStats(ctx, "48201", false); err != nil {
		t.Fatal(err)
	}
	if f.statsCalls != 2 {
		t.Error("read after refresh should hit the rewritten record")
	}

	stats, _ := store.Stats(ctx)
	if stats.Count != 1 {
		t.Errorf("refresh must overwrite, not duplicate: %d records", stats.Count)
	}
}

func TestInvalidFetchResultNeverCached(t *testing.T) {
	bad := goodStats()
	bad.SaleData.MedianPrice = -10
	f := &stubFetcher{info: fetcherInfo(), stats: bad}
	b, store := testBase(t, f)
	ctx := context.Background()

	got, err := b.GetMarketStats(ctx, "48201", false)
	if err != nil {
		t.Fatalf("invalid result should be returned, not failed: %v", err)
	}
	if got == nil {
		t.Fatal("invalid result should still reach the caller")
	}

	stats, _ := store.Stats(ctx)
	if stats.Count != 0 {
		t.Fatalf("invalid result must not poison the cache: %d records", stats.Count)
	}

	// The poisoned record is absent, so the next read fetches again.
	if _, err := b.GetMarketStats(ctx, "48201", false); err != nil {
		t.Fatal(err)
	}
	if f.statsCalls != 2 {
		t.Errorf("expected refetch after uncached invalid result, fetched %d times", f.statsCalls)
	}
}

func TestFetchErrorPropagatesUnchanged(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo(), statsErr: apperrors.RateLimited()}
	b, store := testBase(t, f)

	_, err := b.GetMarketStats(context.Background(), "48201", false)
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("expected rate-limited error to pass through, got %v", err)
	}

	stats, _ := store.Stats(context.Background())
	if stats.Count != 0 {
		t.Error("a failed fetch must not write to the cache")
	}
}

func TestNilFetchResultMeansNoData(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo()}
	b, store := testBase(t, f)

	got, err := b.GetMarketStats(context.Background(), "99999", false)
	if err != nil || got != nil {
		t.Fatalf("expected nil,nil for unknown location, got %v, %v", got, err)
	}
	stats, _ := store.Stats(context.Background())
	if stats.Count != 0 {
		t.Error("no-data result must not be cached")
	}
}

func TestSearchUnsupportedFailsFast(t *testing.T) {
	info := fetcherInfo()
	info.Features.PropertySearch = false
	f := &stubFetcher{info: info}
	b, _ := testBase(t, f)

	_, err := b.SearchProperties(context.Background(), "detroit", false)
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("expected unsupported-operation error, got %v", err)
	}
	if f.propCalls != 0 {
		t.Error("unsupported search must not reach the fetcher")
	}
}

func TestSearchCachesOnlyNonEmptyResults(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo()}
	b, _ := testBase(t, f)
	ctx := context.Background()

	if _, err := b.SearchProperties(ctx, "nowhere", false); err != nil {
		t.Fatal(err)
	}
	if _, err := b.SearchProperties(ctx, "nowhere", false); err != nil {
		t.Fatal(err)
	}
	if f.propCalls != 2 {
		t.Errorf("empty result must not be cached, fetched %d times", f.propCalls)
	}

	f.props = []market.Property{{ID: "p1", Address: "1 Main St", Price: 200_000}}
	if _, err := b.SearchProperties(ctx, "detroit", false); err != nil {
		t.Fatal(err)
	}
	if _, err := b.SearchProperties(ctx, "detroit", false); err != nil {
		t.Fatal(err)
	}
	if f.propCalls != 3 {
		t.Errorf("non-empty result should be served from cache, fetched %d times", f.propCalls)
	}
}

func TestNilStoreDegradesToMisses(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo(), stats: goodStats()}
	b := NewBase(f, nil, BaseConfig{}, testLog())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := b.GetMarketStats(ctx, "48201", false); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
	}
	if f.statsCalls != 2 {
		t.Errorf("without a store every read fetches, fetched %d times", f.statsCalls)
	}
}

func TestCorruptCachePayloadEvictedAndRefetched(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo(), stats: goodStats()}
	b, store := testBase(t, f)
	ctx := context.Background()

	key := b.statsKey(market.ParseLocation("48201"))
	if err := store.Set(ctx, key, []byte("{corrupt"), 0); err != nil {
		t.Fatal(err)
	}

	got, err := b.GetMarketStats(ctx, "48201", false)
	if err != nil || got == nil {
		t.Fatalf("corrupt record should degrade to a refetch: %v, %v", got, err)
	}
	if f.statsCalls != 1 {
		t.Errorf("expected one fetch after corrupt-record eviction, got %d", f.statsCalls)
	}
}

func TestDatasetUploadUnsupportedByDefault(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo()}
	b, _ := testBase(t, f)

	_, err := b.LoadDataset(context.Background(), []byte("a,b\n1,2\n"))
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("expected unsupported-operation error, got %v", err)
	}
}

func TestWaitForDataLoadNoopWithoutBulkLoader(t *testing.T) {
	f := &stubFetcher{info: fetcherInfo()}
	b, _ := testBase(t, f)

	if err := b.WaitForDataLoad(context.Background()); err != nil {
		t.Fatalf("fetcher without async load must report ready: %v", err)
	}
}
