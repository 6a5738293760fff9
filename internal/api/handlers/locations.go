package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"outlet-route-service/internal/api/dto"
	"outlet-route-service/internal/platform/obs"
	"outlet-route-service/internal/ports"
	"outlet-route-service/internal/services"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

type LocationHandler struct {
	Repo ports.LocationRepository
}

// List browses the catalog. province, city and district accept repeated
// or comma-separated values; q matches a name substring.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ports.LocationFilter{
		Provinces:    multiValue(q, "province"),
		Cities:       multiValue(q, "city"),
		Districts:    multiValue(q, "district"),
		NameContains: strings.TrimSpace(q.Get("q")),
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	locs, err := services.ListLocations(r.Context(), h.Repo, filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Str("req_id", obs.RequestID(r.Context())).Err(err).Msg("list locations failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListLocationsResponse{
		Count:     len(locs),
		Locations: make([]dto.LocationResponse, 0, len(locs)),
	}
	for _, l := range locs {
		res.Locations = append(res.Locations, dto.NewLocationResponse(l))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func multiValue(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
