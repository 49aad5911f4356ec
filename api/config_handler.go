// Package api: configuration endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/stockpulse/internal/config"
)

// handleGetConfig returns the running configuration. Provider keys are
// excluded by their json:"-" tags.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.deps.Config,
	})
}

// handleGetConfigKeys returns the status of the provider API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.deps.Config),
	})
}
