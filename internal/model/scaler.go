package model

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// StandardScaler centers each column and divides by its population standard
// deviation. Constant columns keep a scale of 1.
//
// The statistics are fitted by scigo's StandardScaler and kept as the affine
// map it applies, so a fitted scaler is plain data.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit learns the column statistics of x.
func (s *StandardScaler) Fit(x mat.Matrix) error {
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return fmt.Errorf("scaler: empty %dx%d matrix", n, d)
	}

	sc := preprocessing.NewStandardScaler(true, true)
	if err := sc.Fit(x); err != nil {
		return fmt.Errorf("scaler fit: %w", err)
	}

	// Row 0 is the origin; row j+1 is the unit vector of column j. For a
	// column with mean m and scale s they map to -m/s and (1-m)/s.
	basis := mat.NewDense(d+1, d, nil)
	for j := 0; j < d; j++ {
		basis.Set(j+1, j, 1)
	}
	out, err := sc.Transform(basis)
	if err != nil {
		return fmt.Errorf("scaler transform: %w", err)
	}

	s.Mean = make([]float64, d)
	s.Scale = make([]float64, d)
	for j := 0; j < d; j++ {
		if constant(x, j) {
			s.Scale[j] = 1
			s.Mean[j] = x.At(0, j)
			continue
		}
		origin := out.At(0, j)
		step := out.At(j+1, j) - origin
		if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
			return fmt.Errorf("scaler: column %d has no usable scale", j)
		}
		s.Scale[j] = 1 / step
		s.Mean[j] = -origin * s.Scale[j]
	}
	return nil
}

func constant(x mat.Matrix, j int) bool {
	n, _ := x.Dims()
	first := x.At(0, j)
	for i := 1; i < n; i++ {
		if x.At(i, j) != first {
			return false
		}
	}
	return true
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	n, err := checkColumns(x, len(s.Mean))
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, len(s.Mean), nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}
