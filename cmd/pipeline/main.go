// Command pipeline runs one training run: features, split, training,
// scoring, evaluation, artifact persistence, and upload.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/app"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML run configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.RunConfig.LogLevel, cfg.RunConfig.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, cleanup, err := app.BuildPipeline(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	summary, runErr := p.Run(ctx)

	if cfg.Metrics.Pushgateway != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := observability.Push(pushCtx, cfg.Metrics.Pushgateway, cfg.Metrics.Job, prometheus.DefaultGatherer); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		cleanup()
		os.Exit(1)
	}
	logger.Info("run complete", "run_id", summary.RunID, "dir", summary.Dir, "artifact_errors", summary.ArtifactErrors)
}
