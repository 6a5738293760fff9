package optimization

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/ports"
	"strconv"
	"strings"
)

type orsJob struct {
	ID          int       `json:"id"`
	Location    []float64 `json:"location"`
	Service     int64     `json:"service,omitempty"`
	Amount      []int     `json:"amount,omitempty"`
	TimeWindows [][]int64 `json:"time_windows,omitempty"`
}

type orsVehicle struct {
	ID         int       `json:"id"`
	Profile    string    `json:"profile"`
	Start      []float64 `json:"start"`
	Capacity   []int     `json:"capacity,omitempty"`
	TimeWindow []int64   `json:"time_window,omitempty"`
}

type orsOptions struct {
	Geometry bool `json:"g"`
}

type orsRequest struct {
	Jobs     []orsJob     `json:"jobs"`
	Vehicles []orsVehicle `json:"vehicles"`
	Options  orsOptions   `json:"options"`
}

// Numeric step fields are decoded as floats so that a missing value stays
// nil instead of silently becoming zero.
type orsStep struct {
	Type     string    `json:"type"`
	Job      *int64    `json:"job"`
	ID       *int64    `json:"id"`
	Location []float64 `json:"location"`
	Arrival  *float64  `json:"arrival"`
	Service  *float64  `json:"service"`
	Duration *float64  `json:"duration"`
	Distance *float64  `json:"distance"`
}

type orsRoute struct {
	Vehicle  int       `json:"vehicle"`
	Steps    []orsStep `json:"steps"`
	Geometry string    `json:"geometry"`
}

type orsUnassigned struct {
	ID int64 `json:"id"`
}

type orsResponse struct {
	Code       int             `json:"code"`
	Error      string          `json:"error"`
	Routes     []orsRoute      `json:"routes"`
	Unassigned []orsUnassigned `json:"unassigned"`
}

// buildRequest converts the port request to the ORS wire format.
// ORS job ids are integers, so jobs are numbered 1..n and refs[id-1]
// holds the location id each number stands for.
func (o *ORSOptimizer) buildRequest(req ports.OptimizationRequest) (orsRequest, []string, error) {
	if len(req.Jobs) == 0 {
		return orsRequest{}, nil, errors.New("at least one job is required")
	}
	if len(req.Vehicles) == 0 {
		return orsRequest{}, nil, errors.New("at least one vehicle is required")
	}

	refs := make([]string, 0, len(req.Jobs))
	seen := make(map[string]struct{}, len(req.Jobs))
	jobs := make([]orsJob, 0, len(req.Jobs))

	for i, j := range req.Jobs {
		id := strings.TrimSpace(j.LocationID)
		if id == "" {
			return orsRequest{}, nil, fmt.Errorf("job #%d: location id must be non-empty", i+1)
		}
		if _, ok := seen[id]; ok {
			return orsRequest{}, nil, fmt.Errorf("job #%d: duplicate location id %q", i+1, id)
		}
		seen[id] = struct{}{}
		refs = append(refs, id)

		windows := make([][]int64, 0, len(j.TimeWindows))
		for _, w := range j.TimeWindows {
			windows = append(windows, w.Unix())
		}

		jobs = append(jobs, orsJob{
			ID:          i + 1,
			Location:    j.Coordinates.CoordsToList(),
			Service:     j.Service,
			Amount:      j.Amount,
			TimeWindows: windows,
		})
	}

	vehicles := make([]orsVehicle, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		vehicles = append(vehicles, orsVehicle{
			ID:         v.ID,
			Profile:    o.profile,
			Start:      v.Start.CoordsToList(),
			Capacity:   v.Capacity,
			TimeWindow: v.Window.Unix(),
		})
	}

	return orsRequest{
		Jobs:     jobs,
		Vehicles: vehicles,
		Options:  orsOptions{Geometry: true},
	}, refs, nil
}

// decodeResponse parses an ORS optimization body into the port result.
func decodeResponse(body []byte, refs []string) (*ports.OptimizationResult, error) {
	var r orsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ports.ErrMalformedResponse, err)
	}

	if r.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", ports.ErrOptimizerRejected, r.Code, r.Error)
	}

	if len(r.Routes) == 0 {
		return nil, fmt.Errorf("%w: %d job(s) unassigned", ports.ErrNoRoute, len(r.Unassigned))
	}

	out := &ports.OptimizationResult{
		Routes:     make([]ports.OptimizedRoute, 0, len(r.Routes)),
		Unassigned: make([]string, 0, len(r.Unassigned)),
	}

	for _, route := range r.Routes {
		steps := make([]domain.RawStop, 0, len(route.Steps))
		for i, s := range route.Steps {
			switch s.Type {
			case "start":
				steps = append(steps, toRawStop(s, "", true))
			case "job":
				id := s.Job
				if id == nil {
					id = s.ID
				}
				if id == nil {
					return nil, fmt.Errorf("%w: route %d step #%d (%q) has no job id", ports.ErrMalformedResponse, route.Vehicle, i, s.Type)
				}
				steps = append(steps, toRawStop(s, refFor(*id, refs), false))
			default:
				// "end", "break" and shipment steps carry no outlet visit.
				continue
			}
		}

		out.Routes = append(out.Routes, ports.OptimizedRoute{
			VehicleID: route.Vehicle,
			Steps:     steps,
			Geometry:  route.Geometry,
		})
	}

	for _, u := range r.Unassigned {
		out.Unassigned = append(out.Unassigned, refFor(u.ID, refs))
	}

	return out, nil
}

// refFor maps a wire job id back to its location id. Ids the request never
// issued keep their numeric form so they surface as unresolved stops.
func refFor(id int64, refs []string) string {
	if id >= 1 && id <= int64(len(refs)) {
		return refs[id-1]
	}
	return strconv.FormatInt(id, 10)
}

func toRawStop(s orsStep, ref string, isStart bool) domain.RawStop {
	stop := domain.RawStop{
		LocationRef: ref,
		IsStart:     isStart,
		Arrival:     roundPtr(s.Arrival),
		Distance:    roundPtr(s.Distance),
		Duration:    roundPtr(s.Duration),
	}
	if s.Service != nil {
		stop.Service = int64(math.Round(*s.Service))
	}
	if len(s.Location) == 2 {
		stop.Location = &domain.Coordinates{Lon: s.Location[0], Lat: s.Location[1]}
	}
	return stop
}

func roundPtr(v *float64) *int64 {
	if v == nil {
		return nil
	}
	r := int64(math.Round(*v))
	return &r
}
