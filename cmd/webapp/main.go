// Command webapp serves the prediction form and API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/http"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/app"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/predict"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration")
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

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open object store", "error", err)
		os.Exit(1)
	}

	cache := predict.NewCachedLoader(predict.NewStoreLoader(store, cfg.AWS.BucketName, cfg.ModelKeys()), metrics)
	svc := predict.NewService(cache, cfg, logger, metrics)

	// Local bundles can be replaced by a pipeline run while the service is up.
	if dir, ok := store.(*storage.Dir); ok {
		files := make(map[string]string)
		for id, key := range cfg.ModelKeys() {
			p, err := dir.Path(cfg.AWS.BucketName, key)
			if err != nil {
				logger.Warn("model key not watchable", "model", id, "error", err)
				continue
			}
			files[id] = p
		}
		if err := predict.Watch(ctx, cache, files, logger); err != nil {
			logger.Warn("model file watcher disabled", "error", err)
		}
	}

	srv := httpadapter.NewServer(cfg.Server.Addr, svc, svc, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
