package httpapi

import (
	"context"
	"net/http"
	"time"
)

const healthProbeTimeout = 2 * time.Second

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Cache     string `json:"cache,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// health requires the store; the cache is informational only.
func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()
	ts := s.now().UTC().Format(time.RFC3339)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusInternalServerError, healthResponse{
				Status:    "unhealthy",
				Error:     err.Error(),
				Timestamp: ts,
			})
			return
		}
	}

	cache := "disabled"
	if s.cache != nil {
		cache = "connected"
		if err := s.cache.Ping(ctx); err != nil {
			cache = "disconnected"
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Database:  "connected",
		Cache:     cache,
		Timestamp: ts,
	})
}
