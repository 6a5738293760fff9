package api

import (
	"net/http"
	"outlet-route-service/internal/api/handlers"
	"outlet-route-service/internal/metrics"
	"outlet-route-service/internal/ports"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Repo      ports.LocationRepository
	Optimizer ports.Optimizer

	// Optional; enables the database check in /health.
	DB handlers.Pinger

	OptimizerTimeout time.Duration
	Location         *time.Location
	AllowedOrigins   []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	metrics.RegisterDefault()

	healthHandler := &handlers.HealthHandler{DB: d.DB}
	locationHandler := &handlers.LocationHandler{Repo: d.Repo}
	itineraryHandler := &handlers.ItineraryHandler{
		Repo:      d.Repo,
		Optimizer: d.Optimizer,
		Timeout:   d.OptimizerTimeout,
		Location:  d.Location,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", requestIDHeader, "X-Itinerary-Partial"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/locations", locationHandler.List)
	r.Post("/itineraries", itineraryHandler.Plan)
	r.Post("/itineraries/export", itineraryHandler.Export)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return r
}
