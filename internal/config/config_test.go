package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "ORS_RATE_LIMIT_PER_MINUTE", "OPTIMIZER_TIMEOUT", "CACHE_TTL", "EXPORT_TIMEZONE", "REDIS_URL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	t.Setenv("ORS_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.DBDriver != "sqlite" || cfg.DBDSN != "data/app.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.OptimizerTimeout != 30*time.Second || cfg.ORSRateLimit != 40 {
		t.Fatalf("unexpected defaults: timeout=%v rate=%d", cfg.OptimizerTimeout, cfg.ORSRateLimit)
	}
	if cfg.ExportTimezone != time.UTC {
		t.Fatalf("export tz = %v, want UTC", cfg.ExportTimezone)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Fatalf("allowed origins = %v", cfg.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("OPTIMIZER_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := &Config{OptimizerTimeout: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without ORS_API_KEY")
	}
}

func TestPostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}
