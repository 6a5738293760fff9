package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"outlet-route-service/internal/adapters/geometry"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/metrics"
	"outlet-route-service/internal/platform/obs"
	"outlet-route-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrInvalidRequest marks caller mistakes in a planning or browsing request.
var ErrInvalidRequest = errors.New("invalid request")

const (
	DefaultVisitMinutes = 20.0

	DefaultLocationLimit = 500
	MaxLocationLimit     = 5000
)

var (
	DefaultDayStart = domain.Clock{Hour: 8}
	DefaultDayEnd   = domain.Clock{Hour: 20}
)

// PlanRouteRequest describes one visit plan: which outlets, where the
// vehicle starts, and the working day it must fit into.
type PlanRouteRequest struct {
	LocationIDs  []string
	Start        domain.Coordinates
	VisitMinutes float64
	DayStart     domain.Clock
	DayEnd       domain.Clock

	// Calendar day the plan is for, in the zone windows are resolved in.
	Date time.Time
}

// RoutePlan is the outcome of a successful optimization.
type RoutePlan struct {
	Itinerary  *domain.Itinerary
	Geometry   *geometry.FeatureCollection
	Unassigned []string
}

// PlanRoute loads the selected locations, asks the optimizer for a visit
// order and turns its answer into an itinerary.
//
// The optimizer call runs under timeout (no extra bound when timeout <= 0)
// and either succeeds as a whole or returns an error wrapping a ports sentinel.
func PlanRoute(
	ctx context.Context,
	req PlanRouteRequest,
	repo ports.LocationRepository,
	optimizer ports.Optimizer,
	timeout time.Duration,
) (_ *RoutePlan, err error) {
	defer obs.Time(ctx, "services.PlanRoute")(&err)

	req, ids, err := normalizePlanRequest(req)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	locations, err := repo.GetLocations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("plan route: load locations: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := locations[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("plan route: %w: unknown location ids: %s",
			ErrInvalidRequest, strings.Join(missing, ", "))
	}

	optReq, err := buildOptimizationRequest(req, ids, locations)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := optimizer.Optimize(callCtx, optReq)
	if err != nil {
		return nil, fmt.Errorf("plan route: optimize: %w", err)
	}
	if result == nil || len(result.Routes) == 0 {
		return nil, fmt.Errorf("plan route: %w", ports.ErrNoRoute)
	}

	// A single vehicle is dispatched, so only the first route carries stops.
	itinerary, err := BuildItinerary(result.Routes[0].Steps, locations, req.VisitMinutes)
	if err != nil {
		return nil, fmt.Errorf("plan route: build itinerary: %w", err)
	}

	geo, err := geometry.RoutesToGeoJSON(result.Routes)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w: %w", ports.ErrMalformedResponse, err)
	}

	metrics.ItinerariesBuilt.WithLabelValues(strconv.FormatBool(itinerary.Partial)).Inc()
	metrics.UnresolvedStops.Add(float64(itinerary.UnresolvedCount()))

	unassigned := append([]string{}, result.Unassigned...)
	if itinerary.Partial {
		log.Warn().
			Str("req_id", obs.RequestID(ctx)).
			Int("selected", len(ids)).
			Int("stops", itinerary.Totals.StopCount).
			Int("unresolved", itinerary.UnresolvedCount()).
			Strs("unassigned", unassigned).
			Msg("itinerary is partial")
	}

	return &RoutePlan{
		Itinerary:  itinerary,
		Geometry:   geo,
		Unassigned: unassigned,
	}, nil
}

// normalizePlanRequest applies defaults and returns the de-duplicated ids in
// selection order.
func normalizePlanRequest(req PlanRouteRequest) (PlanRouteRequest, []string, error) {
	seen := make(map[string]struct{}, len(req.LocationIDs))
	ids := make([]string, 0, len(req.LocationIDs))
	for _, id := range req.LocationIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return req, nil, fmt.Errorf("%w: at least one location must be selected", ErrInvalidRequest)
	}

	if req.Start.IsZero() {
		return req, nil, fmt.Errorf("%w: start coordinates are required", ErrInvalidRequest)
	}
	if err := req.Start.Validate(); err != nil {
		return req, nil, fmt.Errorf("%w: start: %w", ErrInvalidRequest, err)
	}

	if req.VisitMinutes == 0 {
		req.VisitMinutes = DefaultVisitMinutes
	}
	if !(req.VisitMinutes > 0) || math.IsInf(req.VisitMinutes, 0) {
		return req, nil, fmt.Errorf("%w: visit minutes must be positive", ErrInvalidRequest)
	}

	if req.DayStart == (domain.Clock{}) && req.DayEnd == (domain.Clock{}) {
		req.DayStart, req.DayEnd = DefaultDayStart, DefaultDayEnd
	}
	if err := req.DayStart.Validate(); err != nil {
		return req, nil, fmt.Errorf("%w: day start: %w", ErrInvalidRequest, err)
	}
	if err := req.DayEnd.Validate(); err != nil {
		return req, nil, fmt.Errorf("%w: day end: %w", ErrInvalidRequest, err)
	}
	if !req.DayStart.Before(req.DayEnd) {
		return req, nil, fmt.Errorf("%w: day start %s must be before day end %s",
			ErrInvalidRequest, req.DayStart, req.DayEnd)
	}

	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	return req, ids, nil
}

// buildOptimizationRequest turns the selection into one vehicle with
// capacity for every job plus slack, and one single-unit job per location.
func buildOptimizationRequest(
	req PlanRouteRequest,
	ids []string,
	locations map[string]domain.Location,
) (ports.OptimizationRequest, error) {
	day := domain.TimeWindow{
		Start: req.DayStart.On(req.Date),
		End:   req.DayEnd.On(req.Date),
	}
	service := int64(req.VisitMinutes * 60)

	jobs := make([]ports.OptimizationJob, 0, len(ids))
	for _, id := range ids {
		loc := locations[id]
		if err := loc.Validate(); err != nil {
			return ports.OptimizationRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}

		window := day
		if loc.Hours != nil {
			window = loc.Hours.On(req.Date)
		}

		jobs = append(jobs, ports.OptimizationJob{
			LocationID:  loc.ID,
			Coordinates: loc.Coordinates,
			Service:     service,
			Amount:      []int{1},
			TimeWindows: []domain.TimeWindow{window},
		})
	}

	vehicle := ports.OptimizationVehicle{
		ID:       1,
		Start:    req.Start,
		Capacity: []int{len(jobs) + 2},
		Window:   day,
	}

	return ports.OptimizationRequest{
		Jobs:     jobs,
		Vehicles: []ports.OptimizationVehicle{vehicle},
	}, nil
}

// ListLocations returns catalog locations for browsing before a selection
// is made. A zero limit falls back to DefaultLocationLimit.
func ListLocations(
	ctx context.Context,
	repo ports.LocationRepository,
	filter ports.LocationFilter,
) ([]domain.Location, error) {
	switch {
	case filter.Limit < 0:
		return nil, fmt.Errorf("list locations: %w: limit must not be negative", ErrInvalidRequest)
	case filter.Limit == 0:
		filter.Limit = DefaultLocationLimit
	case filter.Limit > MaxLocationLimit:
		filter.Limit = MaxLocationLimit
	}

	locs, err := repo.ListLocations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}
