// Package httpclient provides the outbound HTTP client used by the remote
// market-data provider and the default-dataset downloader.
//
// Transport and status failures are classified into a small typed taxonomy
// (timeout, connection, auth, not-found, rate-limit, validation, server) so
// upper layers can map them onto user-facing error kinds without inspecting
// status codes themselves. Download performs a streamed read loop with
// fractional progress reporting.
package httpclient
