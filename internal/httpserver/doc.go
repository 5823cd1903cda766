// Package httpserver wraps net/http's server with listen address validation,
// configurable timeouts and graceful shutdown.
package httpserver
