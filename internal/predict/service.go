// Package predict serves single-flight delay predictions from trained model
// bundles.
package predict

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/observability"
)

// ModelInfo describes a selectable model.
type ModelInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Key    string `json:"key"`
	Loaded bool   `json:"loaded"`
}

// Schema lists the form inputs and their options.
type Schema struct {
	Numeric      []config.NumericField `json:"numeric"`
	Airlines     []string              `json:"airlines"`
	AirportTypes []string              `json:"airport_types"`
	DefaultDate  string                `json:"default_date"`
	Models       []ModelInfo           `json:"models"`
}

// Prediction is the predicted arrival delay in minutes.
type Prediction struct {
	Model   string  `json:"model"`
	Minutes float64 `json:"minutes"`
}

// Service loads model bundles and turns form submissions into predictions.
type Service struct {
	cache       *CachedLoader
	keys        map[string]string
	schema      config.Predict
	columnOrder []string
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewService creates a prediction service backed by cache.
func NewService(cache *CachedLoader, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		cache:       cache,
		keys:        cfg.ModelKeys(),
		schema:      cfg.Predict,
		columnOrder: cfg.ColumnOrder.NumFeatures,
		logger:      logger,
		metrics:     metrics,
	}
}

// Models returns every model family in display order.
func (s *Service) Models() []ModelInfo {
	current, loaded := s.cache.Current()
	out := make([]ModelInfo, 0, len(model.Families))
	for _, f := range model.Families {
		id := string(f)
		out = append(out, ModelInfo{
			ID:     id,
			Name:   f.DisplayName(),
			Key:    s.keys[id],
			Loaded: loaded && current == id,
		})
	}
	return out
}

// Schema returns the form description.
func (s *Service) Schema() Schema {
	types := make([]string, len(s.schema.AirportTypes))
	for i, at := range s.schema.AirportTypes {
		types[i] = at.Display
	}
	return Schema{
		Numeric:      s.schema.Numeric,
		Airlines:     s.schema.Airlines,
		AirportTypes: types,
		DefaultDate:  s.schema.DefaultDate,
		Models:       s.Models(),
	}
}

// CheckReadiness reports whether a model is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if _, ok := s.cache.Current(); !ok {
		return errors.New("no model loaded")
	}
	return nil
}

// LoadModel makes id the active model.
func (s *Service) LoadModel(ctx context.Context, id string) (ModelInfo, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{ID: id, Name: b.Family.DisplayName(), Key: s.keys[id], Loaded: true}, nil
}

func (s *Service) load(ctx context.Context, id string) (*model.Bundle, error) {
	if _, err := model.ParseFamily(id); err != nil {
		return nil, errors.Join(ErrUnknownModel, err)
	}
	if current, ok := s.cache.Current(); ok && current == id {
		return s.cache.Load(ctx, id)
	}
	b, err := s.cache.Load(ctx, id)
	if err != nil {
		s.logger.Error("model load failed", "model", id, "error", err)
		return nil, err
	}
	s.logger.Info("model loaded",
		"model", id,
		"features", len(b.Features),
		"trained_at", b.TrainedAt,
	)
	return b, nil
}

// Predict loads id if needed and predicts the delay for form. Failures after
// the model is loaded are PredictionErrors; the service stays usable.
func (s *Service) Predict(ctx context.Context, id string, form Form) (Prediction, error) {
	start := time.Now()
	defer func() { s.metrics.PredictionDuration.Observe(time.Since(start).Seconds()) }()

	b, err := s.load(ctx, id)
	if err != nil {
		s.metrics.Predictions.WithLabelValues(id, "error").Inc()
		return Prediction{}, err
	}

	row, err := Assemble(form, s.schema, s.columnOrder, b)
	if err != nil {
		s.metrics.Predictions.WithLabelValues(id, "error").Inc()
		return Prediction{}, &PredictionError{Model: id, Err: err}
	}
	minutes, err := b.PredictRow(row)
	if err != nil {
		s.metrics.Predictions.WithLabelValues(id, "error").Inc()
		return Prediction{}, &PredictionError{Model: id, Err: err}
	}

	s.metrics.Predictions.WithLabelValues(id, "success").Inc()
	return Prediction{Model: id, Minutes: minutes}, nil
}
