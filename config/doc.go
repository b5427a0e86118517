// Package config provides configuration loading and validation for the
// market data service.
//
// It uses Viper to merge an optional YAML file with environment variables
// (optionally loaded from a .env file), applies per-section defaults, and
// validates the result. Environment variables address nested keys with
// underscore-separated paths, e.g. PROVIDER_REMOTE_API_KEY.
package config
