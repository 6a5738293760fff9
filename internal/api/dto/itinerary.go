package dto

import (
	"errors"
	"fmt"
	"outlet-route-service/internal/adapters/geometry"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/services"
	"strings"
	"time"
)

type ItineraryRequest struct {
	LocationIDs  []string            `json:"location_ids"`
	Start        *domain.Coordinates `json:"start"`
	VisitMinutes float64             `json:"visit_minutes"`

	// "HH:MM"; both empty means the default working day.
	DayStart string `json:"day_start"`
	DayEnd   string `json:"day_end"`

	// "YYYY-MM-DD"; empty means today.
	Date string `json:"date"`
}

// ToPlanRouteRequest converts the body into a service request, resolving
// the date in tz.
func (r ItineraryRequest) ToPlanRouteRequest(now time.Time, tz *time.Location) (services.PlanRouteRequest, error) {
	if tz == nil {
		tz = time.UTC
	}

	out := services.PlanRouteRequest{
		LocationIDs:  r.LocationIDs,
		VisitMinutes: r.VisitMinutes,
		Date:         now.In(tz),
	}
	if r.Start != nil {
		out.Start = *r.Start
	}

	if d := strings.TrimSpace(r.Date); d != "" {
		date, err := time.ParseInLocation("2006-01-02", d, tz)
		if err != nil {
			return out, errors.New("date must be YYYY-MM-DD")
		}
		out.Date = date
	}

	if s := strings.TrimSpace(r.DayStart); s != "" {
		c, err := domain.ParseClock(s)
		if err != nil {
			return out, fmt.Errorf("day_start: %w", err)
		}
		out.DayStart = c
	} else if strings.TrimSpace(r.DayEnd) != "" {
		out.DayStart = services.DefaultDayStart
	}

	if s := strings.TrimSpace(r.DayEnd); s != "" {
		c, err := domain.ParseClock(s)
		if err != nil {
			return out, fmt.Errorf("day_end: %w", err)
		}
		out.DayEnd = c
	} else if strings.TrimSpace(r.DayStart) != "" {
		out.DayEnd = services.DefaultDayEnd
	}

	return out, nil
}

type StopResponse struct {
	LocationID  string              `json:"location_id"`
	IsStart     bool                `json:"is_start"`
	Name        string              `json:"name"`
	MapsURL     string              `json:"maps_url"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`

	Arrival        time.Time `json:"arrival"`
	Departure      time.Time `json:"departure"`
	ServiceSeconds int64     `json:"service_seconds"`

	DistanceMeters     int64 `json:"distance_meters"`
	DurationSeconds    int64 `json:"duration_seconds"`
	DistanceToPrevious int64 `json:"distance_to_previous_meters"`
	DurationToPrevious int64 `json:"duration_to_previous_seconds"`
}

type TotalsResponse struct {
	StopCount           int     `json:"stop_count"`
	TotalDistanceMeters int64   `json:"total_distance_meters"`
	TotalDistanceKm     float64 `json:"total_distance_km"`
	TotalMinutes        float64 `json:"total_minutes"`
	TotalHours          float64 `json:"total_hours"`
}

type ItineraryResponse struct {
	Stops      []StopResponse                     `json:"stops"`
	Totals     TotalsResponse                     `json:"totals"`
	Partial    bool                               `json:"partial"`
	Unresolved []domain.UnresolvedLocationWarning `json:"unresolved"`
	Unassigned []string                           `json:"unassigned"`
	Geometry   *geometry.FeatureCollection        `json:"geometry"`
}

func NewItineraryResponse(plan *services.RoutePlan, tz *time.Location) ItineraryResponse {
	if tz == nil {
		tz = time.UTC
	}
	it := plan.Itinerary

	stops := make([]StopResponse, 0, len(it.Stops))
	for _, s := range it.Stops {
		stops = append(stops, StopResponse{
			LocationID:         s.LocationRef,
			IsStart:            s.IsStart,
			Name:               s.Name,
			MapsURL:            s.MapURL,
			Coordinates:        s.Coordinates,
			Arrival:            time.Unix(s.Arrival, 0).In(tz),
			Departure:          time.Unix(s.Departure, 0).In(tz),
			ServiceSeconds:     s.Service,
			DistanceMeters:     s.DistanceMeters,
			DurationSeconds:    s.DurationSeconds,
			DistanceToPrevious: s.DistanceToPrevious,
			DurationToPrevious: s.DurationToPrevious,
		})
	}

	unresolved := it.Unresolved
	if unresolved == nil {
		unresolved = []domain.UnresolvedLocationWarning{}
	}
	unassigned := plan.Unassigned
	if unassigned == nil {
		unassigned = []string{}
	}

	return ItineraryResponse{
		Stops: stops,
		Totals: TotalsResponse{
			StopCount:           it.Totals.StopCount,
			TotalDistanceMeters: it.Totals.TotalDistanceMeters,
			TotalDistanceKm:     it.Totals.TotalKilometers(),
			TotalMinutes:        it.Totals.TotalMinutes,
			TotalHours:          it.Totals.TotalHours(),
		},
		Partial:    it.Partial,
		Unresolved: unresolved,
		Unassigned: unassigned,
		Geometry:   plan.Geometry,
	}
}
