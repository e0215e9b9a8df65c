// Package app wires configuration into the concrete stores, notifiers, and
// pipelines used by the commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	kafkaadapter "github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/kafka"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/adapter/s3"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/artifact"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/pipeline"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/train"
)

// OpenStore returns the object store selected by storage.backend.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return storage.NewDir(cfg.Storage.LocalRoot), nil
	case "s3":
		store, err := s3.NewFromRegion(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Source returns the local input file when run_config.input is set and the
// configured data object otherwise.
func Source(cfg *config.Config, store storage.ObjectStore) pipeline.Source {
	if cfg.RunConfig.Input != "" {
		return &pipeline.FileSource{Path: cfg.RunConfig.Input}
	}
	return &pipeline.ObjectSource{Store: store, Bucket: cfg.AWS.BucketName, Key: cfg.AWS.DataKey}
}

// BuildPipeline assembles a pipeline from cfg. The returned cleanup closes
// the notifier and must be called once the pipeline is no longer used.
func BuildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, func(), error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	clock := clockwork.NewRealClock()
	sink := artifact.NewSink(cfg.RunConfig.Output, clock, logger)
	trainer := train.New(cfg.TrainModel, logger, metrics, train.WithClock(clock))

	opts := []pipeline.Option{pipeline.WithStore(store), pipeline.WithClock(clock)}
	cleanup := func() {}
	if cfg.Notify.Kafka.Enabled() {
		w := kafkaadapter.NewWriter(cfg.Notify.Kafka, logger)
		opts = append(opts, pipeline.WithNotifier(w))
		cleanup = func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("run notifications enabled", "topic", cfg.Notify.Kafka.Topic)
	}

	p := pipeline.New(cfg, Source(cfg, store), sink, trainer, logger, metrics, opts...)
	return p, cleanup, nil
}
