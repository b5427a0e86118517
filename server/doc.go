// Package server provides the HTTP surface of the market data service: a
// Gin-backed server with the standard middleware stack, system endpoints,
// and the REST API for market statistics, property search, dataset uploads,
// cache management, and provider selection.
package server
