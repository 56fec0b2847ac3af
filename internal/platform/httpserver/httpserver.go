// Package httpserver builds the process http.Server from configuration.
package httpserver

import (
	"net/http"
	"time"

	"plantas/internal/platform/config"
)

// New builds an HTTP server for the farmer API. Read and write timeouts sit
// above the per-request timeout enforced by middleware, so slow clients are
// cut off without racing the handler deadline.
func New(cfg config.Server, handler http.Handler) *http.Server {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       requestTimeout + 5*time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
