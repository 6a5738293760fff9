package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/platform/obs"
	"outlet-route-service/internal/ports"
	"outlet-route-service/internal/services"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().
			Str("req_id", obs.RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Err(err).
			Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// planErrorStatus maps a planning failure to an HTTP status and a client-safe message.
func planErrorStatus(err error) (int, string) {
	var malformed *domain.MalformedStopError

	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidVisitMinutes):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ports.ErrOptimizerUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "optimization service unavailable"
	case errors.Is(err, ports.ErrNoRoute):
		return http.StatusUnprocessableEntity, "no route could be found for the selection"
	case errors.Is(err, ports.ErrOptimizerRejected):
		return http.StatusBadGateway, "optimization service rejected the request"
	case errors.Is(err, domain.ErrEmptyInput),
		errors.As(err, &malformed),
		errors.Is(err, ports.ErrMalformedResponse):
		return http.StatusBadGateway, "optimization service returned an unusable route"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
