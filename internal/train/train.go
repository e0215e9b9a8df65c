// Package train fits the three model families on engineered flight features
// and packages each result as a model.Bundle.
package train

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
)

// EstimatorFactory builds an unfitted regressor from validated hyperparameters.
type EstimatorFactory func(family model.Family, hp Hyperparameters) (model.Regressor, error)

// DefaultFactory maps each family to its estimator in internal/model.
func DefaultFactory(family model.Family, hp Hyperparameters) (model.Regressor, error) {
	switch family {
	case model.FamilyPCR:
		return model.NewPCR(hp.NComponents, hp.VarianceRatio), nil
	case model.FamilyRF:
		return &model.Forest{NEstimators: hp.NEstimators, MaxDepth: hp.MaxDepth, Seed: hp.Seed}, nil
	case model.FamilyGBM:
		return &model.GradientBoosting{NEstimators: hp.NEstimators, MaxDepth: hp.MaxDepth, LearningRate: hp.LearningRate}, nil
	default:
		return nil, fmt.Errorf("unknown model family %q", family)
	}
}

// Trainer fits models from the train_model configuration section.
type Trainer struct {
	cfg     config.TrainModel
	factory EstimatorFactory
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithFactory replaces the estimator constructor.
func WithFactory(f EstimatorFactory) Option {
	return func(t *Trainer) { t.factory = f }
}

// WithClock sets the clock that stamps bundles and seeds estimators whose
// random_state is unset.
func WithClock(c clockwork.Clock) Option {
	return func(t *Trainer) { t.clock = c }
}

// New creates a Trainer.
func New(cfg config.TrainModel, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Trainer {
	t := &Trainer{
		cfg:     cfg,
		factory: DefaultFactory,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TrainPCR fits principal-component regression.
func (t *Trainer) TrainPCR(train dataframe.DataFrame, vocab domain.Vocabulary) (*model.Bundle, error) {
	return t.Train(model.FamilyPCR, train, vocab)
}

// TrainRF fits a random forest.
func (t *Trainer) TrainRF(train dataframe.DataFrame, vocab domain.Vocabulary) (*model.Bundle, error) {
	return t.Train(model.FamilyRF, train, vocab)
}

// TrainGBM fits gradient boosting.
func (t *Trainer) TrainGBM(train dataframe.DataFrame, vocab domain.Vocabulary) (*model.Bundle, error) {
	return t.Train(model.FamilyGBM, train, vocab)
}

// Train validates the family's hyperparameters, selects the configured
// columns, and fits one estimator.
func (t *Trainer) Train(family model.Family, train dataframe.DataFrame, vocab domain.Vocabulary) (*model.Bundle, error) {
	hp, err := Parse(family, t.params(family))
	if err != nil {
		return nil, err
	}
	if hp.DerivedSeed {
		hp.Seed = uint64(t.clock.Now().UnixNano())
	}

	x, err := domain.Matrix(train, t.cfg.Features)
	if err != nil {
		return nil, fmt.Errorf("select %s features: %w", family, err)
	}
	y, err := domain.Column(train, t.cfg.Response)
	if err != nil {
		return nil, fmt.Errorf("select %s response: %w", family, err)
	}
	if family == model.FamilyPCR && hp.NComponents > 0 {
		n, d := x.Dims()
		if limit := min(n, d); hp.NComponents > limit {
			return nil, &InvalidHyperparameterError{
				Family: family,
				Name:   "n_components",
				Value:  hp.NComponents,
				Reason: fmt.Sprintf("exceeds min(rows, features) = %d", limit),
			}
		}
	}

	est, err := t.factory(family, hp)
	if err != nil {
		return nil, fmt.Errorf("build %s estimator: %w", family, err)
	}

	start := t.clock.Now()
	if err := est.Fit(x, y); err != nil {
		return nil, fmt.Errorf("fit %s: %w", family, err)
	}
	elapsed := t.clock.Since(start)
	if t.metrics != nil {
		t.metrics.TrainDuration.WithLabelValues(string(family)).Observe(elapsed.Seconds())
	}
	t.logger.Info("model trained",
		"family", family,
		"rows", len(y),
		"features", len(t.cfg.Features),
		"duration", elapsed,
	)

	return &model.Bundle{
		Family:     family,
		Features:   slices.Clone(t.cfg.Features),
		Response:   t.cfg.Response,
		Vocabulary: vocab,
		Model:      est,
		TrainedAt:  t.clock.Now(),
	}, nil
}

func (t *Trainer) params(family model.Family) config.Params {
	switch family {
	case model.FamilyPCR:
		return t.cfg.PCR
	case model.FamilyRF:
		return t.cfg.RF
	case model.FamilyGBM:
		return t.cfg.GBM
	default:
		return nil
	}
}
