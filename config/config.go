package config

import (
	"fmt"

	"github.com/homescout/marketdata/cache"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/provider"
	"github.com/homescout/marketdata/provider/csvdata"
	"github.com/homescout/marketdata/provider/remote"
	"github.com/homescout/marketdata/server"
)

// ServiceName is the default name used for config and env file discovery.
const ServiceName = "marketd"

// Config is the full application configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging  logger.Config  `yaml:"logging" mapstructure:"logging"`
	Cache    cache.Config   `yaml:"cache" mapstructure:"cache"`
	Server   server.Config  `yaml:"server" mapstructure:"server"`
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`
}

// ProviderConfig groups the data-provider settings: the default variant, the
// caching decorator tuning, and the per-variant configurations.
type ProviderConfig struct {
	// Default is the provider id used when no persisted selection exists.
	Default string `yaml:"default" mapstructure:"default"`

	Base   provider.BaseConfig `yaml:"base" mapstructure:"base"`
	Remote remote.Config       `yaml:"remote" mapstructure:"remote"`
	CSV    csvdata.Config      `yaml:"csv" mapstructure:"csv"`
}

// ApplyDefaults applies default values across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	if c.Provider.Default == "" {
		c.Provider.Default = provider.IDMock
	}

	c.Logging.ApplyDefaults()
	c.Cache.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Provider.Base.ApplyDefaults()
	c.Provider.Remote.ApplyDefaults()
	c.Provider.CSV.ApplyDefaults()
}

// Validate validates all sections.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("config.cache: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Provider.Remote.Validate(); err != nil {
		return fmt.Errorf("config.provider.remote: %w", err)
	}
	return nil
}

// ProviderConfigs returns the per-variant configurations keyed by provider id
// in the form the factory registry consumes.
func (c *Config) ProviderConfigs() map[string]any {
	return map[string]any{
		provider.IDRemote: &c.Provider.Remote,
		provider.IDCSV:    &c.Provider.CSV,
	}
}
