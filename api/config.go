// Package api serves the farming advisor over HTTP.
package api

import (
	"net/http"

	"github.com/farmergpt/farmergpt/pkg/metrics"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// FrontendDir is a built web frontend served at "/". When empty or
	// missing, "/" answers with a plain running message.
	FrontendDir string

	// Metrics is exposed at /metrics when set.
	Metrics *metrics.Metrics

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
}
