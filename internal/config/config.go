package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the runtime configuration of the service, read from the
// environment (optionally populated from a .env file).
type Config struct {
	Port string

	DBDriver string
	// File path for sqlite, connection URL for postgres.
	DBDSN    string
	SeedPath string

	// Apply schema and seed the catalog when the server starts.
	SeedOnStart bool

	ORSAPIKey  string
	ORSBaseURL string
	ORSProfile string

	// Requests per minute allowed towards ORS; 0 disables client-side limiting.
	ORSRateLimit int

	OptimizerTimeout time.Duration

	// Empty disables the optimization result cache.
	RedisURL string
	CacheTTL time.Duration

	ExportTimezone *time.Location
	AllowedOrigins []string
}

// LoadDotEnv loads .env into the process environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}
}

// Load reads Config from the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       Get("PORT", "8080"),
		DBDriver:   Get("DB_DRIVER", "sqlite"),
		SeedPath:   Get("SEED_PATH", "data/seeds/outlets.csv"),
		ORSAPIKey:  strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		ORSBaseURL: Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSProfile: Get("ORS_PROFILE", "driving-car"),
		RedisURL:   strings.TrimSpace(os.Getenv("REDIS_URL")),
	}
	cfg.SeedOnStart = strings.EqualFold(Get("SEED_ON_START", "true"), "true")
	cfg.AllowedOrigins = splitList(Get("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	if d := strings.ToLower(cfg.DBDriver); d == "postgres" || d == "pgx" {
		cfg.DBDSN = os.Getenv("DATABASE_URL")
	} else {
		cfg.DBDSN = Get("DB_PATH", "data/app.db")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return nil, fmt.Errorf("load config: database location is required for driver %q", cfg.DBDriver)
	}

	var err error
	if cfg.ORSRateLimit, err = getInt("ORS_RATE_LIMIT_PER_MINUTE", 40); err != nil {
		return nil, err
	}
	if cfg.OptimizerTimeout, err = getDuration("OPTIMIZER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 6*time.Hour); err != nil {
		return nil, err
	}

	tz := Get("EXPORT_TIMEZONE", "UTC")
	if cfg.ExportTimezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("load config: EXPORT_TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

// Validate checks settings only the HTTP server needs.
func (c *Config) Validate() error {
	if c.ORSAPIKey == "" {
		return errors.New("ORS_API_KEY is required")
	}
	if c.OptimizerTimeout <= 0 {
		return errors.New("OPTIMIZER_TIMEOUT must be positive")
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("load config: %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("load config: %s=%q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
