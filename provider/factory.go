package provider

import (
	"context"

	"github.com/homescout/marketdata/cache"
	"github.com/homescout/marketdata/logger"
)

// ActiveProviderSetting is the meta key persisting the user's provider choice.
const ActiveProviderSetting = "active_provider"

// Deps carries the shared dependencies handed to every provider factory.
type Deps struct {
	// Store backs the read-through cache. A nil store degrades to NoopStore.
	Store cache.Store
	// Settings persists the active-provider selection. May be nil.
	Settings cache.SettingsStore
	// Base configures the caching decorator.
	Base BaseConfig
	// Configs maps provider id to its provider-specific configuration;
	// each factory type-asserts its own entry.
	Configs map[string]any
	// Log is the root logger.
	Log *logger.Logger
}

// Factory builds a provider variant from shared deps and its own config.
type Factory func(deps Deps) (Provider, error)

var (
	factories   = make(map[string]Factory)
	descriptors = make(map[string]Info)
)

// Register registers a provider variant under info.ID. Implementation
// packages call this from an init function; ensure the desired packages are
// imported (e.g. _ ".../provider/mock") so their factories are available.
// The descriptor lets callers list variants without constructing them.
func Register(info Info, f Factory) {
	factories[info.ID] = f
	descriptors[info.ID] = info
}

// Registered returns whether a factory exists for id.
func Registered(id string) bool {
	_, ok := factories[id]
	return ok
}

// InfoOf returns the registered descriptor for id.
func InfoOf(id string) (Info, bool) {
	info, ok := descriptors[id]
	return info, ok
}

// Resolve constructs the active provider. The persisted user selection, when
// present, overrides the configured default. Unknown, unregistered or
// failing ids fall back to the mock provider with a logged warning; the
// caller always receives a working provider and Resolve never fails.
func Resolve(ctx context.Context, defaultID string, deps Deps) Provider {
	log := deps.Log.WithComponent("provider-factory")

	id := defaultID
	if deps.Settings != nil {
		if persisted, ok, err := deps.Settings.Setting(ctx, ActiveProviderSetting); err == nil && ok && persisted != "" {
			id = persisted
		}
	}
	if id == "" {
		id = IDMock
	}

	if p := build(id, deps, log); p != nil {
		return p
	}

	log.Warn("unknown or failing provider id, falling back to mock", map[string]interface{}{
		logger.FieldProvider: id,
	})
	if p := build(IDMock, deps, log); p != nil {
		return p
	}

	// Mock factory not linked in; keep the never-fail guarantee with an
	// inert provider.
	log.Error("mock provider factory not registered")
	return NewBase(unconfiguredFetcher{}, deps.Store, deps.Base, deps.Log)
}

func build(id string, deps Deps, log *logger.Logger) Provider {
	f, ok := factories[id]
	if !ok {
		return nil
	}
	p, err := f(deps)
	if err != nil {
		log.Warn("provider construction failed", map[string]interface{}{
			logger.FieldProvider: id, "error": err.Error(),
		})
		return nil
	}
	return p
}

// Persist stores the user's provider selection for future sessions.
func Persist(ctx context.Context, settings cache.SettingsStore, id string) error {
	if settings == nil {
		return nil
	}
	return settings.SetSetting(ctx, ActiveProviderSetting, id)
}
