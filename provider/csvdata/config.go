package csvdata

import (
	"github.com/homescout/marketdata/httpclient"
)

const defaultMaxWideRows = 250

// Config configures the CSV-backed provider.
type Config struct {
	// DatasetURL is an optional default dataset (e.g. a ZHVI export) fetched
	// with a progress-reporting streamed download when no previously
	// ingested dataset exists in the cache store.
	DatasetURL string `yaml:"dataset_url" mapstructure:"dataset_url"`

	// MaxWideRows caps how many leading data rows of a wide-format file are
	// processed. Wide exports list the largest markets first, so the cap
	// keeps ingestion bounded without losing the interesting rows.
	MaxWideRows int `yaml:"max_wide_rows" mapstructure:"max_wide_rows"`

	// HTTP configures the dataset downloader.
	HTTP httpclient.Config `yaml:"http" mapstructure:"http"`

	// OnProgress, when set, receives fractional default-dataset download
	// progress in [0,1]. Code only; never populated from a config file.
	OnProgress ProgressFunc `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.MaxWideRows <= 0 {
		c.MaxWideRows = defaultMaxWideRows
	}
	c.HTTP.ApplyDefaults()
}
