// Package score pairs a bundle's predictions on held-out rows with the
// observed response.
package score

import (
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
)

// FeatureMismatchError reports score_model features that differ from the
// features the bundle was trained on.
type FeatureMismatchError struct {
	Configured []string
	Trained    []string
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("score features %v do not match trained features %v", e.Configured, e.Trained)
}

// Score predicts every row of test and pairs the result with the response
// column in row order.
func Score(test dataframe.DataFrame, bundle *model.Bundle, cfg config.ScoreModel) (domain.ScoredPairs, error) {
	x, err := domain.Matrix(test, cfg.Features)
	if err != nil {
		return domain.ScoredPairs{}, fmt.Errorf("select score features: %w", err)
	}
	if !slices.Equal(cfg.Features, bundle.Features) {
		return domain.ScoredPairs{}, &FeatureMismatchError{Configured: cfg.Features, Trained: bundle.Features}
	}
	actual, err := domain.Column(test, cfg.Response)
	if err != nil {
		return domain.ScoredPairs{}, fmt.Errorf("select score response: %w", err)
	}

	pred, err := bundle.Predict(x)
	if err != nil {
		return domain.ScoredPairs{}, fmt.Errorf("predict with %s: %w", bundle.Family, err)
	}
	return domain.ScoredPairs{Actual: actual, Predicted: pred}, nil
}
