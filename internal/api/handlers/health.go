package handlers

import (
	"context"
	"net/http"
	"outlet-route-service/internal/platform/obs"
	"time"

	"github.com/rs/zerolog/log"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	DB Pinger
}

// Health reports liveness and catalog database connectivity.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.DB.PingContext(ctx); err != nil {
			log.Error().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("health: database ping failed")
			res["status"] = "error"
			res["database"] = "disconnected"
			writeJSON(w, r, http.StatusServiceUnavailable, res)
			return
		}
		res["database"] = "connected"
	}

	writeJSON(w, r, http.StatusOK, res)
}
