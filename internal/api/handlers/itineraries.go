package handlers

import (
	"bytes"
	"net/http"
	"outlet-route-service/internal/api/dto"
	"outlet-route-service/internal/export"
	"outlet-route-service/internal/platform/obs"
	"outlet-route-service/internal/ports"
	"outlet-route-service/internal/services"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type ItineraryHandler struct {
	Repo      ports.LocationRepository
	Optimizer ports.Optimizer
	Timeout   time.Duration

	// Zone used for dates, JSON times and export columns. Nil means UTC.
	Location *time.Location
	Now      func() time.Time
}

func (h *ItineraryHandler) zone() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func (h *ItineraryHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// plan decodes the body and runs route planning, writing the error
// response itself when it returns nil.
func (h *ItineraryHandler) plan(w http.ResponseWriter, r *http.Request) *services.RoutePlan {
	var req dto.ItineraryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return nil
	}

	svcReq, err := req.ToPlanRouteRequest(h.now(), h.zone())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return nil
	}

	plan, err := services.PlanRoute(r.Context(), svcReq, h.Repo, h.Optimizer, h.Timeout)
	if err != nil {
		status, msg := planErrorStatus(err)
		ev := log.Warn()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("req_id", obs.RequestID(r.Context())).
			Int("status", status).
			Err(err).
			Msg("plan route failed")
		writeError(w, r, status, msg)
		return nil
	}

	return plan
}

// Plan optimizes the visit order of the selected locations and returns
// the enriched itinerary with its route geometry.
func (h *ItineraryHandler) Plan(w http.ResponseWriter, r *http.Request) {
	plan := h.plan(w, r)
	if plan == nil {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewItineraryResponse(plan, h.zone()))
}

// Export plans like Plan and returns the itinerary as a downloadable
// table (format=csv, the default, or format=xlsx).
func (h *ItineraryHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		writeError(w, r, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	plan := h.plan(w, r)
	if plan == nil {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.Rows(plan.Itinerary, h.zone())); err != nil {
		log.Error().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("export failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	name := export.FileName(h.now().In(h.zone()), format)
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Itinerary-Partial", strconv.FormatBool(plan.Itinerary.Partial))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("write export body failed")
	}
}
