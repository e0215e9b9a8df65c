package domain

import (
	"fmt"
	"math"
)

// ScoredPairs holds actual and predicted responses aligned by test row.
type ScoredPairs struct {
	Actual    []float64
	Predicted []float64
}

// Len returns the number of pairs.
func (p ScoredPairs) Len() int { return len(p.Actual) }

// Metrics is the accuracy record of one model on one scored pair set.
type Metrics struct {
	MAE  float64 `yaml:"mae" json:"mae"`
	RMSE float64 `yaml:"rmse" json:"rmse"`
	R2   float64 `yaml:"r2" json:"r2"`
}

// Evaluate computes MAE, RMSE, and R² in one pass. Empty input and any NaN
// are rejected before anything is accumulated.
func Evaluate(p ScoredPairs) (Metrics, error) {
	if len(p.Actual) != len(p.Predicted) {
		return Metrics{}, &InvalidValueError{
			Series: "scores",
			Index:  -1,
			Reason: fmt.Sprintf("%d actual values but %d predictions", len(p.Actual), len(p.Predicted)),
		}
	}
	if len(p.Actual) == 0 {
		return Metrics{}, fmt.Errorf("evaluate scores: %w", ErrEmptyInput)
	}
	for i := range p.Actual {
		if math.IsNaN(p.Actual[i]) {
			return Metrics{}, &InvalidValueError{Series: "actual", Index: i, Reason: "NaN"}
		}
		if math.IsNaN(p.Predicted[i]) {
			return Metrics{}, &InvalidValueError{Series: "predicted", Index: i, Reason: "NaN"}
		}
	}

	var (
		absSum float64
		sqSum  float64
		mean   float64 // running mean of actuals
		ssTot  float64 // running sum of squared deviations from mean
	)
	for i, y := range p.Actual {
		diff := y - p.Predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff

		delta := y - mean
		mean += delta / float64(i+1)
		ssTot += delta * (y - mean)
	}

	n := float64(len(p.Actual))
	m := Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	switch {
	case ssTot != 0:
		m.R2 = 1 - sqSum/ssTot
	case sqSum == 0:
		m.R2 = 1
	default:
		m.R2 = 0
	}
	return m, nil
}
