package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the cache database ping
const healthCheckTimeout = 2 * time.Second

// handleHealth reports liveness and whether the roadmap cache database answers.
// A failing cache is reported as degraded with 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "roadmap",
	}
	status := http.StatusOK

	if s.container != nil && s.container.CacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.container.CacheDB.QuickCheck(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Roadmap cache database unreachable")
			response["status"] = "degraded"
			response["cache"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			response["cache"] = "ok"
		}
	}

	s.writeJSON(w, status, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
