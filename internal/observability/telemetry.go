package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/football-insights/internal/config"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
)

// Telemetry owns the tracing and profiling lifecycles of one process.
type Telemetry struct {
	logger          *logging.Logger
	shutdownTracing func(context.Context) error
	stopProfiler    func() error
	pprofServer     *http.Server
}

// Start enables whatever the config turns on. component tags every signal so
// the api and the worker binaries can be told apart.
func Start(cfg config.Config, component string, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{
		logger:          logger.Named("observability"),
		shutdownTracing: func(context.Context) error { return nil },
		stopProfiler:    func() error { return nil },
	}

	shutdownTracing, err := startTracing(cfg, component, t.logger)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	t.shutdownTracing = shutdownTracing

	stopProfiler, err := startProfiler(cfg, component, t.logger)
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	t.stopProfiler = stopProfiler

	t.pprofServer = startPprofServer(cfg, t.logger)
	return t, nil
}

// Shutdown stops pprof, then the profiler, then flushes traces.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.pprofServer != nil {
		if err := t.pprofServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop pprof: %w", err))
		} else {
			t.logger.Info("pprof server stopped")
		}
		t.pprofServer = nil
	}
	if err := t.stopProfiler(); err != nil {
		errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
	}
	if err := t.shutdownTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown uptrace: %w", err))
	}
	t.stopProfiler = func() error { return nil }
	t.shutdownTracing = func(context.Context) error { return nil }
	return errors.Join(errs...)
}
