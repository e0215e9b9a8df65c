// Command scheduler runs the pipeline on run_config.schedule until it is
// interrupted. A run that is still in progress when the next one is due
// causes that tick to be skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron"

	httpadapter "github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/http"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/app"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/predict"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML run configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.RunConfig.Schedule == "" {
		slog.Error("run_config.schedule is required")
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

	var running atomic.Bool
	c := cron.New()
	err = c.AddFunc(cfg.RunConfig.Schedule, func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warn("previous run still in progress, skipping")
			return
		}
		defer running.Store(false)

		if _, err := p.Run(ctx); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("invalid schedule", "schedule", cfg.RunConfig.Schedule, "error", err)
		os.Exit(1)
	}

	// Exposes /metrics and /readyz (ready after the first successful run).
	// Prediction routes answer from the configured bundles.
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open object store", "error", err)
		os.Exit(1)
	}
	svc := predict.NewService(
		predict.NewCachedLoader(predict.NewStoreLoader(store, cfg.AWS.BucketName, cfg.ModelKeys()), metrics),
		cfg, logger, metrics,
	)
	srv := httpadapter.NewServer(cfg.Server.Addr, p, svc, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	c.Start()
	logger.Info("scheduler started", "schedule", cfg.RunConfig.Schedule)

	<-ctx.Done()
	logger.Info("shutting down")
	c.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
