package ports

import (
	"context"
	"errors"
	"outlet-route-service/internal/domain"
)

// Error classes reported by Optimizer implementations.
// Implementations wrap one of these so callers can branch with errors.Is.
var (
	// The optimization service could not be reached or did not answer in time.
	ErrOptimizerUnavailable = errors.New("optimizer unavailable")
	// The service refused the request (4xx other than rate limiting).
	ErrOptimizerRejected = errors.New("optimizer rejected request")
	// The service answered with a body that could not be interpreted.
	ErrMalformedResponse = errors.New("malformed optimizer response")
	// The service answered but produced no route.
	ErrNoRoute = errors.New("optimizer returned no route")
)

// A visit the vehicle must perform.
type OptimizationJob struct {
	LocationID  string
	Coordinates domain.Coordinates
	Service     int64
	Amount      []int
	TimeWindows []domain.TimeWindow
}

// The single vehicle performing the visits.
type OptimizationVehicle struct {
	ID       int
	Start    domain.Coordinates
	Capacity []int
	Window   domain.TimeWindow
}

type OptimizationRequest struct {
	Jobs     []OptimizationJob
	Vehicles []OptimizationVehicle
}

// One vehicle route in the optimizer's answer.
type OptimizedRoute struct {
	VehicleID int
	Steps     []domain.RawStop

	// Encoded polyline; opaque outside the geometry adapter.
	Geometry string
}

type OptimizationResult struct {
	Routes     []OptimizedRoute
	Unassigned []string
}

// Contract for the external vehicle-routing optimization service.
type Optimizer interface {
	// Optimize returns the full result or an error; there are no partial answers.
	Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error)
}
