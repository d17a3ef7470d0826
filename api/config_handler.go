// Configuration inspection endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/resellerdash/internal/config"
)

// ConfigView is the running configuration with the sheet URL masked.
type ConfigView struct {
	Sheet struct {
		URL          string `json:"url"`
		TimeoutSec   int    `json:"timeout_sec"`
		CacheEnabled bool   `json:"cache_enabled"`
		CacheTTL     int    `json:"cache_ttl"`
		Breaker      bool   `json:"breaker_enabled"`
	} `json:"sheet"`
	API struct {
		Host        string   `json:"host"`
		Port        int      `json:"port"`
		CORSOrigins []string `json:"cors_origins"`
	} `json:"api"`
	Metrics struct {
		Enabled bool   `json:"enabled"`
		Path    string `json:"path"`
	} `json:"metrics"`
	Logging struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"logging"`
}

func newConfigView(cfg *config.Config) ConfigView {
	var v ConfigView
	v.Sheet.URL = config.CheckEndpoint(cfg).Masked
	v.Sheet.TimeoutSec = cfg.Sheet.TimeoutSec
	v.Sheet.CacheEnabled = cfg.Sheet.CacheEnabled
	v.Sheet.CacheTTL = cfg.Sheet.CacheTTL
	v.Sheet.Breaker = cfg.Sheet.Breaker.Enabled
	v.API.Host = cfg.API.Host
	v.API.Port = cfg.API.Port
	v.API.CORSOrigins = cfg.API.CORSOrigins
	v.Metrics.Enabled = cfg.Metrics.Enabled
	v.Metrics.Path = cfg.Metrics.Path
	v.Logging.Level = cfg.Logging.Level
	v.Logging.Format = cfg.Logging.Format
	return v
}

// handleGetConfig returns the current (running) configuration.
// The sheet URL is masked since it embeds the deployment ID.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeData(w, newConfigView(s.cfg))
}

// handleGetEndpoint reports whether the sheet endpoint is configured and
// where the value came from.
func (s *Server) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	writeData(w, config.CheckEndpoint(s.cfg))
}
