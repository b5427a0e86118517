// Package middleware provides the standard Gin middleware stack: panic
// recovery, request-ID propagation, CORS, body-size limiting, and request
// logging.
package middleware
