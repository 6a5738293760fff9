package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizerCalls counts optimization calls by outcome
	// (ok, unavailable, rejected, malformed, no_route, error).
	OptimizerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_calls_total", Help: "Optimization service calls by outcome."},
		[]string{"outcome"},
	)
	OptimizerLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimizer_call_duration_seconds", Help: "Optimization service call latency in seconds.", Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}},
	)
	OptimizerCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_cache_lookups_total", Help: "Optimization result cache lookups by result."},
		[]string{"result"},
	)

	ItinerariesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "itineraries_built_total", Help: "Itineraries built, split by completeness."},
		[]string{"partial"},
	)
	UnresolvedStops = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_unresolved_stops_total", Help: "Stops whose location was missing from the catalog."},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizerCalls)
		Registry.MustRegister(OptimizerLatency)
		Registry.MustRegister(OptimizerCache)
		Registry.MustRegister(ItinerariesBuilt)
		Registry.MustRegister(UnresolvedStops)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
