package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"outlet-route-service/internal/adapters/cache"
	"outlet-route-service/internal/adapters/optimization"
	"outlet-route-service/internal/adapters/repositories"
	"outlet-route-service/internal/api"
	"outlet-route-service/internal/config"
	"outlet-route-service/internal/metrics"
	"outlet-route-service/internal/platform/db"
	"outlet-route-service/internal/platform/obs"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It wires concrete adapters (SQL catalog, ORS, Redis) behind ports and starts the HTTP server.
func main() {
	obs.SetupLogger()
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer conn.Close()

	ctx := context.Background()
	dialect := repositories.DialectFor(cfg.DBDriver)

	// Initialize schema and seed demo data on startup for local runs.
	if cfg.SeedOnStart {
		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("Schema initialization failed")
		}
		n, err := repositories.SeedFromCSV(ctx, conn, dialect, cfg.SeedPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Seeding failed")
		}
		log.Info().Int("locations", n).Str("path", cfg.SeedPath).Msg("Catalog seeded")
	}

	var resultCache *cache.RedisOptimizationCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			// The cache is an optimization; run without it.
			log.Warn().Err(err).Msg("Redis unavailable, optimization cache disabled")
		} else {
			defer client.Close()
			resultCache = cache.NewRedisOptimizationCache(client, cfg.CacheTTL)
		}
	}

	optimizer, err := optimization.NewORSOptimizer(cfg.ORSAPIKey, optimization.ORSOptions{
		BaseURL:           cfg.ORSBaseURL,
		Profile:           cfg.ORSProfile,
		RequestsPerMinute: cfg.ORSRateLimit,
		Cache:             resultCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create optimizer")
	}

	metrics.RegisterDefault()
	router := api.NewRouter(api.Deps{
		Repo:             repositories.NewSQLLocationRepository(conn, dialect),
		Optimizer:        optimizer,
		DB:               conn,
		OptimizerTimeout: cfg.OptimizerTimeout,
		Location:         cfg.ExportTimezone,
		AllowedOrigins:   cfg.AllowedOrigins,
	})

	// WriteTimeout leaves room for the optimizer timeout plus retries.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.OptimizerTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("db_driver", cfg.DBDriver).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
