package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/artifact"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/score"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/storage"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/train"
)

// Notifier announces a completed run.
type Notifier interface {
	Notify(ctx context.Context, summary domain.RunSummary) error
}

// Pipeline runs feature generation, training, scoring, evaluation, and
// artifact persistence for every model family.
type Pipeline struct {
	cfg      *config.Config
	source   Source
	sink     *artifact.Sink
	trainer  *train.Trainer
	store    storage.ObjectStore
	notifier Notifier
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// Option configures optional Pipeline collaborators.
type Option func(*Pipeline)

// WithStore sets the object store used for artifact upload.
func WithStore(s storage.ObjectStore) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithNotifier publishes a summary after each successful run.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithClock replaces the clock used for run timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(cfg *config.Config, source Source, sink *artifact.Sink, trainer *train.Trainer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		trainer: trainer,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once at least one run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes one full training run. Validation and training errors abort
// the run; artifact write and upload errors are logged and counted.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	summary, err := p.run(ctx)
	if err != nil {
		p.metrics.RunsCompleted.WithLabelValues("error").Inc()
		p.logger.Error("pipeline run failed", "run_id", summary.RunID, "error", err)
		return summary, err
	}
	p.metrics.RunsCompleted.WithLabelValues("success").Inc()
	p.ready.Store(true)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		StartedAt: p.clock.Now().UTC(),
		Metrics:   make(map[string]domain.Metrics, len(model.Families)),
	}

	run, err := p.sink.NewRun()
	if err != nil {
		return summary, err
	}
	summary.RunID = run.ID
	summary.Dir = run.Dir
	p.logger.Info("pipeline started", "run_id", run.ID, "source", p.source.String())

	p.persist(&summary, run.WriteConfig(p.cfg))

	raw, err := p.source.Read(ctx)
	if err != nil {
		return summary, err
	}
	p.metrics.RowsLoaded.Add(float64(raw.Nrow()))

	features, vocab, err := domain.GenerateFeatures(raw)
	if err != nil {
		return summary, fmt.Errorf("generate features: %w", err)
	}
	summary.Rows = features.Nrow()
	p.metrics.RowsCancelled.Add(float64(raw.Nrow() - features.Nrow()))
	p.logger.Info("features generated",
		"rows", raw.Nrow(),
		"kept", features.Nrow(),
		"columns", len(features.Names()),
	)
	if p.cfg.RunConfig.SaveData {
		p.persist(&summary, run.WriteFrame(artifact.DataFile, features))
	}

	trainDF, testDF, err := domain.TrainTest(features, p.cfg.TrainModel.TestSize, p.cfg.TrainModel.RandomState)
	if err != nil {
		return summary, fmt.Errorf("split: %w", err)
	}
	summary.TrainRows = trainDF.Nrow()
	summary.TestRows = testDF.Nrow()
	if p.cfg.RunConfig.SaveData {
		p.persist(&summary, run.WriteFrame(artifact.TrainFile, trainDF))
		p.persist(&summary, run.WriteFrame(artifact.TestFile, testDF))
	}

	for _, family := range model.Families {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		bundle, err := p.trainer.Train(family, trainDF, vocab)
		if err != nil {
			return summary, fmt.Errorf("train %s: %w", family, err)
		}
		p.persist(&summary, run.WriteModel(bundle))

		pairs, err := score.Score(testDF, bundle, p.cfg.ScoreModel)
		if err != nil {
			return summary, fmt.Errorf("score %s: %w", family, err)
		}
		p.persist(&summary, run.WriteScores(family, pairs))

		m, err := domain.Evaluate(pairs)
		if err != nil {
			return summary, fmt.Errorf("evaluate %s: %w", family, err)
		}
		p.persist(&summary, run.WriteMetrics(family, m))

		summary.Metrics[string(family)] = m
		p.metrics.ModelScore.WithLabelValues(string(family), "mae").Set(m.MAE)
		p.metrics.ModelScore.WithLabelValues(string(family), "rmse").Set(m.RMSE)
		p.metrics.ModelScore.WithLabelValues(string(family), "r2").Set(m.R2)
		p.logger.Info("model evaluated",
			"family", family,
			"mae", m.MAE,
			"rmse", m.RMSE,
			"r2", m.R2,
		)
	}

	p.persist(&summary, run.WriteVocabulary(vocab))

	if p.cfg.AWS.Upload {
		p.upload(ctx, run, &summary)
	}

	summary.CompletedAt = p.clock.Now().UTC()
	p.logger.Info("pipeline completed",
		"run_id", run.ID,
		"duration", summary.CompletedAt.Sub(summary.StartedAt).Round(time.Millisecond),
		"artifact_errors", summary.ArtifactErrors,
	)

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, summary); err != nil {
			p.logger.Warn("run notification failed", "run_id", run.ID, "error", err)
		}
	}
	return summary, nil
}

func (p *Pipeline) upload(ctx context.Context, run *artifact.Run, summary *domain.RunSummary) {
	if p.store == nil {
		p.persist(summary, errors.New("upload enabled but no object store configured"))
		return
	}
	res, err := artifact.Upload(ctx, run.Dir, p.store, p.cfg.AWS.BucketName, p.cfg.AWS.Prefix, p.logger)
	if err != nil {
		p.persist(summary, err)
		return
	}
	summary.Uploaded = res.URIs
	p.metrics.ArtifactsUploaded.Add(float64(len(res.URIs)))
	summary.ArtifactErrors += len(res.Failed)
	p.metrics.ArtifactErrors.Add(float64(len(res.Failed)))
}

// persist records a failed artifact write without stopping the run.
func (p *Pipeline) persist(summary *domain.RunSummary, err error) {
	if err == nil {
		return
	}
	summary.ArtifactErrors++
	p.metrics.ArtifactErrors.Inc()
	p.logger.Error("artifact not persisted", "run_id", summary.RunID, "error", err)
}
