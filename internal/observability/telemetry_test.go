package observability

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/football-insights/internal/config"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	cfg := config.Config{
		ServiceName:    "football-insights",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	telemetry, err := Start(cfg, "api", logging.NewNop())
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if telemetry.pprofServer != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown telemetry: %v", err)
	}
}

func TestStart_EmptyDSNKeepsTracingOff(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: true,
		UptraceDSN:     "  ",
		ServiceName:    "football-insights",
		AppEnv:         config.EnvDev,
	}

	telemetry, err := Start(cfg, "worker", logging.NewNop())
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown telemetry: %v", err)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	cfg := config.Config{
		PprofEnabled: true,
		PprofAddr:    "127.0.0.1:0",
		AppEnv:       config.EnvDev,
	}

	telemetry, err := Start(cfg, "worker", logging.NewNop())
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if telemetry.pprofServer == nil {
		t.Fatalf("expected pprof server when enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := telemetry.Shutdown(ctx); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	var nilTelemetry *Telemetry
	if err := nilTelemetry.Shutdown(ctx); err != nil {
		t.Fatalf("nil shutdown: %v", err)
	}
}
