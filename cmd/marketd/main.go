// Command marketd serves housing market statistics over HTTP, backed by a
// durable read-through cache and a switchable data provider.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/homescout/marketdata/cache"
	"github.com/homescout/marketdata/config"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/provider"
	"github.com/homescout/marketdata/server"
	"github.com/homescout/marketdata/server/endpoint"

	// Provider variants register themselves with the factory.
	_ "github.com/homescout/marketdata/provider/csvdata"
	_ "github.com/homescout/marketdata/provider/mock"
	_ "github.com/homescout/marketdata/provider/remote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", map[string]interface{}{"error": err.Error()})
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store cache.Store
	sqlStore, err := cache.Open(cfg.Cache, log)
	if err != nil {
		// The service keeps working without durable caching; every read is
		// simply a miss.
		log.Warn("cache store unavailable, running without persistence", map[string]interface{}{
			"path": cfg.Cache.Path, "error": err.Error(),
		})
		store = cache.NewNoop()
	} else {
		store = sqlStore
		defer sqlStore.Close()
	}

	var settings cache.SettingsStore
	if sqlStore != nil {
		settings = sqlStore
	}

	deps := provider.Deps{
		Store:    store,
		Settings: settings,
		Base:     cfg.Provider.Base,
		Configs:  cfg.ProviderConfigs(),
		Log:      log,
	}

	active := provider.Resolve(ctx, cfg.Provider.Default, deps)
	log.Info("provider resolved", map[string]interface{}{
		logger.FieldProvider: active.Info().ID,
	})

	api := server.NewAPI(active, cfg.Provider.Default, deps, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, cfg.Version, healthChecker(store, api))
	api.Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.Fatal("server start failed", map[string]interface{}{"error": err.Error()})
	}

	<-ctx.Done()
	if err := srv.Stop(context.Background()); err != nil {
		log.Error("shutdown error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

// healthChecker reports cache and provider readiness. A missing cache or an
// unconfigured provider degrades health without making the service unhealthy.
func healthChecker(store cache.Store, api *server.API) endpoint.HealthChecker {
	return func(ctx context.Context) []endpoint.ComponentHealth {
		cacheHealth := endpoint.ComponentHealth{Name: "cache", Status: endpoint.StatusHealthy}
		if !store.Supported() {
			cacheHealth.Status = endpoint.StatusDegraded
			cacheHealth.Message = "durable cache unavailable, reads always miss"
		}

		p := api.Provider()
		providerHealth := endpoint.ComponentHealth{Name: "provider:" + p.Info().ID, Status: endpoint.StatusHealthy}
		if !p.IsConfigured(ctx) {
			providerHealth.Status = endpoint.StatusDegraded
			providerHealth.Message = "provider not configured"
		}

		return []endpoint.ComponentHealth{cacheHealth, providerHealth}
	}
}
