package optimization

import (
	"context"
	"outlet-route-service/internal/ports"
	"sync"
)

// MockOptimizer returns a canned result (or error) and records the requests it saw.
type MockOptimizer struct {
	Result *ports.OptimizationResult
	Err    error

	mu       sync.Mutex
	requests []ports.OptimizationRequest
}

func NewMockOptimizer(result *ports.OptimizationResult, err error) *MockOptimizer {
	return &MockOptimizer{Result: result, Err: err}
}

func (m *MockOptimizer) Optimize(ctx context.Context, req ports.OptimizationRequest) (*ports.OptimizationResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

func (m *MockOptimizer) Requests() []ports.OptimizationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.OptimizationRequest(nil), m.requests...)
}
