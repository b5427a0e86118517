package cache

import "fmt"

// Config configures the durable cache store.
type Config struct {
	// Path is the SQLite database file. Intermediate directories are created.
	Path string `yaml:"path" mapstructure:"path"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "data/marketdata.db"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("cache: path is required")
	}
	return nil
}
