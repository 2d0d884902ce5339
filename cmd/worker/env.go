package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/football-insights/internal/app"
	"github.com/riskibarqy/football-insights/internal/config"
	"github.com/riskibarqy/football-insights/internal/observability"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/platform/scheduler"
)

// jobFunc runs one iteration of a job and returns its summary.
type jobFunc func(ctx context.Context) (any, error)

type workerEnv struct {
	cfg       config.Config
	logger    *logging.Logger
	container *app.Container
	closers   []func(context.Context) error
}

// newWorkerEnv loads config and opens storage. Missing provider credentials
// fail here, before any work starts.
func newWorkerEnv(ctx context.Context, needsSportsAPI bool) (*workerEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "component", "worker", "env", cfg.AppEnv)
	logging.SetDefault(logger)

	if needsSportsAPI {
		if err := cfg.ValidateSportsAPI(); err != nil {
			logger.ErrorContext(ctx, "fatal startup error", "error", err)
			return nil, err
		}
	}

	env := &workerEnv{cfg: cfg, logger: logger}

	telemetry, err := observability.Start(cfg, "worker", logger)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, telemetry.Shutdown)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		_ = env.close()
		return nil, fmt.Errorf("build container: %w", err)
	}
	env.container = container
	env.closers = append(env.closers, func(context.Context) error { return container.Close() })
	return env, nil
}

// close runs the registered closers in reverse order.
func (e *workerEnv) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.closers = nil
	_ = e.logger.Sync()
	return firstErr
}

// runJob runs job once, or forever with --loop. Single-shot errors are
// returned; loop iterations only log them.
func runJob(ctx context.Context, out io.Writer, env *workerEnv, opts *commonOptions, name string, job jobFunc) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if opts.Loop {
		env.logger.InfoContext(ctx, "loop mode", "job", name, "interval_ms", opts.IntervalMS)
		scheduler.Loop(ctx, name, opts.Interval(), func(ctx context.Context) error {
			_, err := job(ctx)
			return err
		}, env.logger)
		return nil
	}

	result, err := job(ctx)
	if err != nil {
		env.logger.ErrorContext(ctx, "job failed", "job", name, "error", err)
		return err
	}
	return printSummary(out, result)
}

func printSummary(out io.Writer, result any) error {
	if result == nil {
		return nil
	}
	raw, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
