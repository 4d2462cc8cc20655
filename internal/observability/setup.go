package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/honeynil/BankBackOffice/internal/config"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/observability"
)

// Setup wires logs, metrics and traces. The returned function flushes traces and stops the metrics listener.
func Setup(cfg *config.Config) func(context.Context) error {
	observability.InitLogger(cfg.LogLevel)
	metricsServer := observability.InitMetrics(cfg.MetricsAddr)
	tracerShutdown := observability.InitTracing(cfg.ServiceName, cfg.OTLPEndpoint)

	return func(ctx context.Context) error {
		if metricsServer != nil {
			if err := metricsServer.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}
		return tracerShutdown(ctx)
	}
}
