package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `x-other=1, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("unexpected StoreDriver: %q", cfg.StoreDriver)
	}
	if cfg.ProgressBackend != ProgressBackendFile {
		t.Fatalf("unexpected ProgressBackend: %q", cfg.ProgressBackend)
	}
	if cfg.MaintenanceInterval != 5*time.Minute {
		t.Fatalf("unexpected MaintenanceInterval: %s", cfg.MaintenanceInterval)
	}
	if cfg.DelayBetweenRequests != time.Second {
		t.Fatalf("unexpected DelayBetweenRequests: %s", cfg.DelayBetweenRequests)
	}
	if cfg.SettlementMaxWorkers != 4 {
		t.Fatalf("unexpected SettlementMaxWorkers: %d", cfg.SettlementMaxWorkers)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if cfg.ServiceName != "football-insights" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
}

func TestLoad_SwaggerDefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_DRIVER")
		}
	})

	t.Run("store progress needs postgres", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("PROGRESS_BACKEND", "store")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for PROGRESS_BACKEND=store with memory driver")
		}
	})

	t.Run("memory with file progress", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", " Memory ")
		t.Setenv("PROGRESS_BACKEND", "file")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreDriver != StoreDriverMemory {
			t.Fatalf("unexpected StoreDriver: %q", cfg.StoreDriver)
		}
	})
}

func TestLoad_DelayBetweenRequestsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cases := map[string]time.Duration{
		"1500":  1500 * time.Millisecond,
		"0":     0,
		"250ms": 250 * time.Millisecond,
		"2s":    2 * time.Second,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("DELAY_BETWEEN_REQUESTS", raw)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if cfg.DelayBetweenRequests != want {
				t.Fatalf("expected %s, got %s", want, cfg.DelayBetweenRequests)
			}
		})
	}

	t.Run("negative", func(t *testing.T) {
		t.Setenv("DELAY_BETWEEN_REQUESTS", "-5")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative delay")
		}
	})
}

func TestLoad_PositiveDurations(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	for _, key := range []string{"MAINTENANCE_INTERVAL", "SYNC_LOCK_TTL", "SPORTS_API_TIMEOUT", "CACHE_TTL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0s")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=0s", key)
			}
		})
	}
}

func TestLoad_SettlementWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SETTLEMENT_MAX_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SETTLEMENT_MAX_WORKERS=0")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "football-insights-worker")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "football-insights-worker" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestValidateSportsAPI(t *testing.T) {
	t.Parallel()

	if err := (Config{}).ValidateSportsAPI(); err == nil {
		t.Fatalf("expected error without credentials")
	}
	err := (Config{SportsAPIKey: "key"}).ValidateSportsAPI()
	if err == nil || err.Error() != "SPORTS_API_SECRET required for sports data sync" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Config{SportsAPIKey: "key", SportsAPISecret: "secret"}).ValidateSportsAPI(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
