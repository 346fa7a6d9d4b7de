// Package httpserver provides a thin wrapper around net/http.Server with
// sensible timeouts, signal-aware graceful shutdown, and structured logging.
package httpserver
