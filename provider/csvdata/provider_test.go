package csvdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/homescout/marketdata/cache"
	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/market"
)

const flatDataset = "city,state,zip,median_price,percent_change\n" +
	"Detroit,MI,48201,245000,2.4\n" +
	"Austin,TX,73301,550000,-1.1\n"

func testProvider(t *testing.T, store cache.Store) *Provider {
	t.Helper()
	p, err := New(Config{}, store, testLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestWaitForDataLoadWithoutDataset(t *testing.T) {
	p := testProvider(t, cache.NewNoop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.WaitForDataLoad(ctx); err != nil {
		t.Fatalf("load with no dataset configured must succeed: %v", err)
	}
	if p.IsConfigured(context.Background()) {
		t.Error("provider without data must report unconfigured")
	}
}

func TestLoadDatasetAndLookup(t *testing.T) {
	p := testProvider(t, cache.NewNoop())
	ctx := context.Background()

	summary, err := p.LoadDataset(ctx, []byte(flatDataset))
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if summary.Dialect != "flat" || summary.Ingested != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if !p.IsConfigured(ctx) {
		t.Error("provider with data must report configured")
	}

	t.Run("zip lookup", func(t *testing.T) {
		s, err := p.FetchMarketStats(ctx, market.ParseLocation("48201"))
		if err != nil || s == nil {
			t.Fatalf("zip lookup failed: %v, %v", s, err)
		}
		if s.Name != "Detroit, MI" {
			t.Errorf("name = %q", s.Name)
		}
	})

	t.Run("city state lookup is case insensitive", func(t *testing.T) {
		s, err := p.FetchMarketStats(ctx, market.ParseLocation("detroit, mi"))
		if err != nil || s == nil {
			t.Fatalf("lookup failed: %v, %v", s, err)
		}
	})

	t.Run("city only falls back to scan", func(t *testing.T) {
		s, err := p.FetchMarketStats(ctx, market.ParseLocation("Austin"))
		if err != nil || s == nil {
			t.Fatalf("city-only lookup failed: %v, %v", s, err)
		}
		if s.State != "TX" {
			t.Errorf("state = %q", s.State)
		}
	})

	t.Run("unknown location yields no data", func(t *testing.T) {
		s, err := p.FetchMarketStats(ctx, market.ParseLocation("99999"))
		if err != nil || s != nil {
			t.Fatalf("expected nil,nil, got %v, %v", s, err)
		}
	})
}

func TestDatasetPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.Open(cache.Config{Path: filepath.Join(dir, "cache.db")}, testLog())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	p1 := testProvider(t, store)
	if _, err := p1.LoadDataset(ctx, []byte(flatDataset)); err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	// A fresh provider instance restores the pre-parsed dataset from the store.
	p2 := testProvider(t, store)
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p2.WaitForDataLoad(waitCtx); err != nil {
		t.Fatalf("restore load failed: %v", err)
	}

	s, err := p2.FetchMarketStats(ctx, market.ParseLocation("48201"))
	if err != nil || s == nil {
		t.Fatalf("restored dataset lookup failed: %v, %v", s, err)
	}
}

func TestFetchPropertiesUnsupported(t *testing.T) {
	p := testProvider(t, cache.NewNoop())
	_, err := p.FetchProperties(context.Background(), "detroit")
	if !apperrors.IsUnsupported(err) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestUploadRecoversFromFailedDefaultDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := New(Config{DatasetURL: srv.URL}, cache.NewNoop(), testLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.WaitForDataLoad(ctx); err == nil {
		t.Fatal("failed download must surface from WaitForDataLoad")
	}

	// A later successful upload replaces the failed load entirely.
	if _, err := p.LoadDataset(ctx, []byte(flatDataset)); err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if err := p.WaitForDataLoad(ctx); err != nil {
		t.Errorf("load error must clear once a dataset is installed: %v", err)
	}
	s, err := p.FetchMarketStats(ctx, market.ParseLocation("48201"))
	if err != nil || s == nil {
		t.Fatalf("uploaded dataset must serve queries: %v, %v", s, err)
	}
	if !p.IsConfigured(ctx) {
		t.Error("provider with uploaded data must report configured")
	}
}

func TestDefaultDownloadReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(flatDataset))
	}))
	defer srv.Close()

	var fractions []float64
	cfg := Config{
		DatasetURL: srv.URL,
		OnProgress: func(f float64) { fractions = append(fractions, f) },
	}
	p, err := New(cfg, cache.NewNoop(), testLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.WaitForDataLoad(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(fractions) == 0 {
		t.Fatal("expected progress callbacks during the default download")
	}
	if last := fractions[len(fractions)-1]; last != 1 {
		t.Errorf("final fraction = %v, want 1", last)
	}
	if s, err := p.FetchMarketStats(ctx, market.ParseLocation("48201")); err != nil || s == nil {
		t.Fatalf("downloaded dataset lookup failed: %v, %v", s, err)
	}
}

func TestLoadDatasetRejectsGarbage(t *testing.T) {
	p := testProvider(t, cache.NewNoop())
	if _, err := p.LoadDataset(context.Background(), []byte("")); err == nil {
		t.Error("empty upload must fail")
	}
	if _, err := p.LoadDataset(context.Background(), []byte("foo,bar\n1,2\n")); err == nil {
		t.Error("unrecognized headers must fail")
	}
}
