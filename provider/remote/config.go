package remote

import (
	"fmt"
	"time"

	"github.com/homescout/marketdata/httpclient"
)

const (
	defaultTimeout      = 12 * time.Second
	defaultMonthlyQuota = 50
	defaultAPIKeyHeader = "X-Api-Key"
)

// Config configures the remote market API provider.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/v2.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates requests. The provider reports itself
	// unconfigured when empty.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// APIKeyHeader is the header carrying the key.
	APIKeyHeader string `yaml:"api_key_header" mapstructure:"api_key_header"`

	// Timeout bounds each request, reported as a timeout failure distinct
	// from other network failures.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MonthlyQuota is the free-tier call allowance. Exhausting it
	// short-circuits to a rate-limited error before any network call.
	MonthlyQuota int `yaml:"monthly_quota" mapstructure:"monthly_quota"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MonthlyQuota <= 0 {
		c.MonthlyQuota = defaultMonthlyQuota
	}
	if c.APIKeyHeader == "" {
		c.APIKeyHeader = defaultAPIKeyHeader
	}
}

// Validate checks the configuration. An empty APIKey is valid: it simply
// leaves the provider unconfigured.
func (c *Config) Validate() error {
	if c.APIKey != "" && c.BaseURL == "" {
		return fmt.Errorf("remote: base_url is required when api_key is set")
	}
	return nil
}

func (c *Config) httpConfig() httpclient.Config {
	headers := map[string]string{"Accept": "application/json"}
	if c.APIKey != "" {
		headers[c.APIKeyHeader] = c.APIKey
	}
	return httpclient.Config{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		Headers: headers,
	}
}
