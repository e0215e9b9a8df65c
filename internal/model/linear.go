package model

import (
	"fmt"

	"github.com/YuminosukeSato/scigo/linear"
	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares with an intercept, fitted by
// scigo and kept as its coefficients.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
}

// Fit solves for the coefficients of x against y.
func (l *LinearRegression) Fit(x mat.Matrix, y []float64) error {
	n, d, err := checkTraining(x, y)
	if err != nil {
		return err
	}

	ols := linear.NewLinearRegression()
	if err := ols.Fit(x, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("least squares: %w", err)
	}

	// The origin row yields the intercept; each unit row adds one coefficient.
	basis := mat.NewDense(d+1, d, nil)
	for j := 0; j < d; j++ {
		basis.Set(j+1, j, 1)
	}
	out, err := ols.Predict(basis)
	if err != nil {
		return fmt.Errorf("least squares predict: %w", err)
	}

	l.Intercept = out.At(0, 0)
	l.Coef = make([]float64, d)
	for j := range l.Coef {
		l.Coef[j] = out.At(j+1, 0) - l.Intercept
	}
	return nil
}

// Predict returns x·Coef + Intercept for every row.
func (l *LinearRegression) Predict(x mat.Matrix) ([]float64, error) {
	if l.Coef == nil {
		return nil, ErrNotFitted
	}
	n, err := checkColumns(x, len(l.Coef))
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		v := l.Intercept
		for j, c := range l.Coef {
			v += c * x.At(i, j)
		}
		out[i] = v
	}
	return out, nil
}
