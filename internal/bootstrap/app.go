package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/microlend/paygate/internal/gateway"
	"github.com/microlend/paygate/internal/infrastructure/config"
	"github.com/microlend/paygate/internal/infrastructure/observability"
	"github.com/microlend/paygate/internal/providers"
	"github.com/rs/zerolog"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Registry *providers.Registry
	Gateway  *gateway.Gateway
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Msg("Starting")

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			go func() {
				<-ctx.Done()
				observability.Shutdown(context.Background(), tp)
			}()
			logger.Info().Msg("Tracing enabled")
		}
	}

	metrics := observability.NewMetrics(metricsNamespace, nil)
	logger.Info().Msg("Metrics initialized")

	registry, err := providers.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}
	logger.Info().Strs("providers", registry.Names()).Msg("Payment providers registered")

	g := gateway.New(registry,
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics),
		gateway.WithDefaultProvider(cfg.Gateway.DefaultProvider),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Registry: registry,
		Gateway:  g,
	}, nil
}
