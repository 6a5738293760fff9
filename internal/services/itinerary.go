package services

import (
	"fmt"
	"math"
	"outlet-route-service/internal/domain"
	"strings"
)

// BuildItinerary turns the ordered steps of one optimized route into an
// enriched itinerary.
//
// Per-leg deltas are first differences over all raw stops, computed before
// stops are joined to the catalog, so dropping an unresolved stop never
// changes the deltas of its neighbours. visitMinutes feeds only the
// aggregate total; per-stop departures use each stop's own service time.
//
// The function is pure: the same inputs always give an equal result.
func BuildItinerary(
	stops []domain.RawStop,
	locations map[string]domain.Location,
	visitMinutes float64,
) (*domain.Itinerary, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("build itinerary: no stops: %w", domain.ErrEmptyInput)
	}

	if !(visitMinutes > 0) || math.IsInf(visitMinutes, 0) {
		return nil, fmt.Errorf("build itinerary: %w (got %v)", domain.ErrInvalidVisitMinutes, visitMinutes)
	}

	if err := validateStops(stops); err != nil {
		return nil, fmt.Errorf("build itinerary: %w", err)
	}

	enriched := make([]domain.ItineraryStop, 0, len(stops))
	unresolved := []domain.UnresolvedLocationWarning{}

	var prevDistance, prevDuration int64
	for i, s := range stops {
		distance := *s.Distance
		duration := *s.Duration

		var distanceDelta, durationDelta int64
		if i > 0 {
			distanceDelta = distance - prevDistance
			durationDelta = duration - prevDuration
		}
		prevDistance, prevDuration = distance, duration

		stop := domain.ItineraryStop{
			LocationRef:        s.LocationRef,
			IsStart:            s.IsStart,
			Arrival:            *s.Arrival,
			Departure:          *s.Arrival + s.Service,
			Service:            s.Service,
			DistanceMeters:     distance,
			DurationSeconds:    duration,
			DistanceToPrevious: distanceDelta,
			DurationToPrevious: durationDelta,
			Coordinates:        copyCoordinates(s.Location),
		}

		if !s.IsStart {
			loc, ok := locations[s.LocationRef]
			if !ok {
				unresolved = append(unresolved, domain.UnresolvedLocationWarning{
					Index:       i,
					LocationRef: s.LocationRef,
				})
				continue
			}

			stop.Name = loc.Name
			stop.MapURL = loc.MapsLink()
			if stop.Coordinates == nil {
				c := loc.Coordinates
				stop.Coordinates = &c
			}
		}

		enriched = append(enriched, stop)
	}

	last := stops[len(stops)-1]

	// Service time is already inside the optimizer's cumulative duration;
	// adding it again per visit keeps the figure users have always been shown.
	totalMinutes := float64(*last.Duration)/60 + float64(len(stops)-1)*visitMinutes

	return &domain.Itinerary{
		Stops:      enriched,
		Unresolved: unresolved,
		Partial:    len(stops) != len(locations)+1 || len(unresolved) > 0,
		Totals: domain.Totals{
			StopCount:           len(stops),
			TotalDistanceMeters: *last.Distance,
			TotalMinutes:        totalMinutes,
		},
	}, nil
}

// validateStops checks required fields and the start sentinel placement.
func validateStops(stops []domain.RawStop) error {
	hasStart := false
	var prev *domain.RawStop

	for i := range stops {
		s := &stops[i]

		if s.IsStart {
			if i != 0 {
				return &domain.MalformedStopError{Index: i, Reason: "start sentinel must be the first stop"}
			}
			hasStart = true
		} else if strings.TrimSpace(s.LocationRef) == "" {
			return &domain.MalformedStopError{Index: i, Field: "location_ref", Reason: "missing"}
		}

		if s.Arrival == nil {
			return &domain.MalformedStopError{Index: i, Field: "arrival", Reason: "missing"}
		}
		if s.Distance == nil {
			return &domain.MalformedStopError{Index: i, Field: "distance", Reason: "missing"}
		}
		if s.Duration == nil {
			return &domain.MalformedStopError{Index: i, Field: "duration", Reason: "missing"}
		}

		if s.Service < 0 {
			return &domain.MalformedStopError{Index: i, Field: "service", Reason: "negative"}
		}
		if *s.Distance < 0 {
			return &domain.MalformedStopError{Index: i, Field: "distance", Reason: "negative"}
		}
		if *s.Duration < 0 {
			return &domain.MalformedStopError{Index: i, Field: "duration", Reason: "negative"}
		}

		if prev != nil {
			if *s.Distance < *prev.Distance {
				return &domain.MalformedStopError{Index: i, Field: "distance", Reason: "cumulative value decreases"}
			}
			if *s.Duration < *prev.Duration {
				return &domain.MalformedStopError{Index: i, Field: "duration", Reason: "cumulative value decreases"}
			}
		}
		prev = s
	}

	if !hasStart {
		return fmt.Errorf("no start sentinel among %d stops: %w", len(stops), domain.ErrEmptyInput)
	}

	return nil
}

func copyCoordinates(c *domain.Coordinates) *domain.Coordinates {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
