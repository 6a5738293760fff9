package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"outlet-route-service/internal/adapters/optimization"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/ports"
	"strings"
	"testing"
	"time"
)

type emptyRepo struct{}

func (emptyRepo) ListLocations(context.Context, ports.LocationFilter) ([]domain.Location, error) {
	return []domain.Location{}, nil
}

func (emptyRepo) GetLocations(context.Context, []string) (map[string]domain.Location, error) {
	return map[string]domain.Location{}, nil
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Repo:             emptyRepo{},
		Optimizer:        optimization.NewMockOptimizer(nil, ports.ErrNoRoute),
		OptimizerTimeout: time.Second,
		Location:         time.UTC,
		AllowedOrigins:   []string{"http://localhost:5173"},
	})
}

func TestRouter_RequestID(t *testing.T) {
	h := newTestRouter()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected inbound request id to be kept, got %q", got)
	}
}

func TestRouter_Routes(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/locations", "", http.StatusOK},
		{http.MethodPost, "/locations", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/itineraries", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/itineraries", `{"location_ids":["X"],"start":{"lon":1,"lat":1}}`, http.StatusBadRequest},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
	}
}

func TestRouter_MetricsExposeRequests(t *testing.T) {
	h := newTestRouter()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/locations", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",path="/locations",status="200"}`) {
		t.Fatalf("expected request counter for /locations in metrics output")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/itineraries", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
	}
}
