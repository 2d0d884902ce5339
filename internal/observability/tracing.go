package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/football-insights/internal/config"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

func startTracing(cfg config.Config, component string, logger *logging.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.UptraceEnabled {
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return noop, nil
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return noop, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("service.component", component)),
	)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"component", component,
		"environment", cfg.AppEnv,
	)
	return uptrace.Shutdown, nil
}
