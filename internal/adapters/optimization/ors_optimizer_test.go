package optimization

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"outlet-route-service/internal/adapters/cache"
	"outlet-route-service/internal/domain"
	"outlet-route-service/internal/ports"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const sampleResponse = `{
  "code": 0,
  "routes": [{
    "vehicle": 0,
    "geometry": "_p~iF~ps|U_ulLnnqC",
    "steps": [
      {"type": "start", "location": [106.8, -6.2], "arrival": 1000, "duration": 0, "distance": 0},
      {"type": "job", "job": 2, "location": [106.82, -6.24], "arrival": 1500, "service": 600, "duration": 500, "distance": 5000},
      {"type": "job", "id": 1, "location": [106.85, -6.21], "arrival": 2500, "service": 600, "duration": 1200, "distance": 12000},
      {"type": "end", "location": [106.85, -6.21], "arrival": 3100, "duration": 1200, "distance": 12000}
    ]
  }],
  "unassigned": [{"id": 3}]
}`

func sampleRequest() ports.OptimizationRequest {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	window := domain.TimeWindow{Start: day.Add(8 * time.Hour), End: day.Add(20 * time.Hour)}

	return ports.OptimizationRequest{
		Jobs: []ports.OptimizationJob{
			{LocationID: "OUT-A", Coordinates: domain.Coordinates{Lon: 106.85, Lat: -6.21}, Service: 600, Amount: []int{1}, TimeWindows: []domain.TimeWindow{window}},
			{LocationID: "OUT-B", Coordinates: domain.Coordinates{Lon: 106.82, Lat: -6.24}, Service: 600, Amount: []int{1}, TimeWindows: []domain.TimeWindow{window}},
			{LocationID: "OUT-C", Coordinates: domain.Coordinates{Lon: 0, Lat: 0}, Service: 600, Amount: []int{1}, TimeWindows: []domain.TimeWindow{window}},
		},
		Vehicles: []ports.OptimizationVehicle{
			{ID: 0, Start: domain.Coordinates{Lon: 106.8, Lat: -6.2}, Capacity: []int{5}, Window: window},
		},
	}
}

func newTestOptimizer(t *testing.T, url string, c *cache.RedisOptimizationCache) *ORSOptimizer {
	t.Helper()

	o, err := NewORSOptimizer("test-key", ORSOptions{BaseURL: url, Cache: c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o.initialBackoff = time.Millisecond
	return o
}

func TestORSOptimizerOptimize(t *testing.T) {
	var got orsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/optimization" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing api key header")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	res, err := newTestOptimizer(t, srv.URL, nil).Optimize(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Jobs) != 3 || got.Jobs[0].ID != 1 || got.Jobs[1].ID != 2 {
		t.Fatalf("unexpected wire jobs: %+v", got.Jobs)
	}
	if !got.Options.Geometry {
		t.Fatalf("expected geometry to be requested")
	}
	if got.Vehicles[0].Profile != "driving-car" || len(got.Vehicles[0].TimeWindow) != 2 {
		t.Fatalf("unexpected wire vehicle: %+v", got.Vehicles[0])
	}

	if len(res.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(res.Routes))
	}
	steps := res.Routes[0].Steps
	if len(steps) != 3 {
		t.Fatalf("expected end step to be dropped, got %d steps", len(steps))
	}
	if !steps[0].IsStart || steps[0].LocationRef != "" {
		t.Fatalf("first step = %+v, want start sentinel", steps[0])
	}
	if steps[1].LocationRef != "OUT-B" || steps[2].LocationRef != "OUT-A" {
		t.Fatalf("job ids not mapped back: %q, %q", steps[1].LocationRef, steps[2].LocationRef)
	}
	if *steps[2].Distance != 12000 || *steps[2].Duration != 1200 || steps[2].Service != 600 {
		t.Fatalf("unexpected step values: %+v", steps[2])
	}
	if steps[1].Location == nil || steps[1].Location.Lat != -6.24 {
		t.Fatalf("step location not decoded: %+v", steps[1].Location)
	}
	if res.Routes[0].Geometry == "" {
		t.Fatalf("expected geometry")
	}
	if len(res.Unassigned) != 1 || res.Unassigned[0] != "OUT-C" {
		t.Fatalf("unassigned = %v", res.Unassigned)
	}
}

func TestORSOptimizerErrorClasses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		retries bool
	}{
		{name: "server error", status: 503, body: "busy", want: ports.ErrOptimizerUnavailable, retries: true},
		{name: "rate limited", status: 429, body: "slow down", want: ports.ErrOptimizerUnavailable, retries: true},
		{name: "bad request", status: 400, body: "bad", want: ports.ErrOptimizerRejected},
		{name: "not json", status: 200, body: "<html>", want: ports.ErrMalformedResponse},
		{name: "non numeric field", status: 200, body: `{"code":0,"routes":[{"steps":[{"type":"start","arrival":"soon"}]}]}`, want: ports.ErrMalformedResponse},
		{name: "job without id", status: 200, body: `{"code":0,"routes":[{"steps":[{"type":"job","arrival":1}]}]}`, want: ports.ErrMalformedResponse},
		{name: "no routes", status: 200, body: `{"code":0,"routes":[],"unassigned":[{"id":1}]}`, want: ports.ErrNoRoute},
		{name: "error code", status: 200, body: `{"code":2,"error":"invalid input"}`, want: ports.ErrOptimizerRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestOptimizer(t, srv.URL, nil).Optimize(context.Background(), sampleRequest())
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}

			n := atomic.LoadInt32(&calls)
			if tc.retries && n != 4 {
				t.Fatalf("expected 4 attempts, got %d", n)
			}
			if !tc.retries && n != 1 {
				t.Fatalf("expected 1 attempt, got %d", n)
			}
		})
	}
}

func TestDecodeResponseSkipsNonJobSteps(t *testing.T) {
	body := []byte(`{"code":0,"routes":[{"vehicle":1,"steps":[
		{"type":"start","arrival":0,"duration":0,"distance":0},
		{"type":"break","id":1,"arrival":100,"service":300,"duration":100,"distance":800},
		{"type":"job","id":1,"arrival":700,"service":600,"duration":400,"distance":2500},
		{"type":"end","arrival":1300,"duration":400,"distance":2500}
	]}]}`)

	res, err := decodeResponse(body, []string{"OUT-001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	steps := res.Routes[0].Steps
	if len(steps) != 2 {
		t.Fatalf("expected start and one job, got %d steps", len(steps))
	}
	if !steps[0].IsStart {
		t.Fatalf("expected first step to be the start sentinel")
	}
	if steps[1].LocationRef != "OUT-001" || *steps[1].Arrival != 700 {
		t.Fatalf("unexpected job step: %+v", steps[1])
	}
}

func TestORSOptimizerTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestOptimizer(t, srv.URL, nil).Optimize(ctx, sampleRequest())
	if !errors.Is(err, ports.ErrOptimizerUnavailable) {
		t.Fatalf("err = %v, want ErrOptimizerUnavailable", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded in chain", err)
	}
}

func TestORSOptimizerRejectsInvalidRequest(t *testing.T) {
	o := newTestOptimizer(t, "http://127.0.0.1:0", nil)

	req := sampleRequest()
	req.Jobs[1].LocationID = req.Jobs[0].LocationID
	if _, err := o.Optimize(context.Background(), req); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	if _, err := o.Optimize(context.Background(), ports.OptimizationRequest{}); err == nil {
		t.Fatalf("expected error for empty request")
	}
}

func TestORSOptimizerUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	o := newTestOptimizer(t, srv.URL, cache.NewRedisOptimizationCache(client, time.Hour))

	first, err := o.Optimize(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := o.Optimize(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
	if len(second.Routes[0].Steps) != len(first.Routes[0].Steps) {
		t.Fatalf("cached result differs from fresh result")
	}

	// A broken cache must not break optimization.
	mr.Close()
	if _, err := o.Optimize(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("unexpected error with cache down: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected upstream call when cache is down, got %d", n)
	}
}

func TestMockOptimizer(t *testing.T) {
	want := &ports.OptimizationResult{Unassigned: []string{"x"}}
	m := NewMockOptimizer(want, nil)

	got, err := m.Optimize(context.Background(), sampleRequest())
	if err != nil || got != want {
		t.Fatalf("Optimize() = %v, %v", got, err)
	}
	if len(m.Requests()) != 1 {
		t.Fatalf("expected recorded request")
	}
}
