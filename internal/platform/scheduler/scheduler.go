package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/panics"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context) error

// RunSafely calls task and turns a panic into an error.
func RunSafely(ctx context.Context, task Task) (err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		err = task(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return fmt.Errorf("task panicked: %w", recovered.AsError())
	}
	return err
}

// Loop runs task immediately and then again interval after each iteration
// ends, until ctx is cancelled. Iteration errors and panics are logged and
// never stop the loop.
func Loop(ctx context.Context, name string, interval time.Duration, task Task, logger *logging.Logger) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler").With("task", name)
	if interval <= 0 {
		interval = time.Minute
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for iteration := 1; ; iteration++ {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "loop stopped", "iterations", iteration-1)
			return
		case <-timer.C:
		}

		startedAt := time.Now()
		if err := RunSafely(ctx, task); err != nil {
			logger.ErrorContext(ctx, "loop iteration failed", "iteration", iteration, "error", err)
		} else {
			logger.InfoContext(ctx, "loop iteration done", "iteration", iteration, "duration_ms", time.Since(startedAt).Milliseconds())
		}
		timer.Reset(interval)
	}
}

// Periodic is a fixed-tick background runner built on cron. A tick that
// fires while the previous one is still running is skipped.
type Periodic struct {
	cron   *cron.Cron
	logger *logging.Logger
}

func NewPeriodic(logger *logging.Logger) *Periodic {
	if logger == nil {
		logger = logging.Default()
	}
	return &Periodic{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.Named("periodic"),
	}
}

// Every registers task on a fixed interval. ctx is handed to every run.
func (p *Periodic) Every(ctx context.Context, name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("interval for %s must be > 0", name)
	}
	spec := "@every " + interval.String()
	_, err := p.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if err := RunSafely(ctx, task); err != nil {
			p.logger.ErrorContext(ctx, "periodic task failed", "task", strings.TrimSpace(name), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (p *Periodic) Start() {
	p.cron.Start()
}

// Stop prevents new ticks and waits for a running one, bounded by ctx.
func (p *Periodic) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "periodic stop timed out")
	}
}
