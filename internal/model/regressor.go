package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned by Predict on an estimator that has not been fitted.
var ErrNotFitted = errors.New("estimator not fitted")

// Regressor is a fitted-or-fittable model mapping feature rows to a response.
type Regressor interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
}

// ShapeError reports a matrix whose dimensions do not fit the estimator.
type ShapeError struct {
	Op   string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", e.Op, e.Want, e.Got)
}

func checkTraining(x mat.Matrix, y []float64) (n, d int, err error) {
	n, d = x.Dims()
	if n == 0 || d == 0 {
		return 0, 0, fmt.Errorf("fit: empty %dx%d matrix", n, d)
	}
	if len(y) != n {
		return 0, 0, &ShapeError{Op: "fit response length", Want: n, Got: len(y)}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("fit: response[%d] is %v", i, v)
		}
	}
	return n, d, nil
}

func checkColumns(x mat.Matrix, want int) (n int, err error) {
	n, d := x.Dims()
	if d != want {
		return 0, &ShapeError{Op: "predict columns", Want: want, Got: d}
	}
	return n, nil
}

func mean(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var s float64
	for _, v := range y {
		s += v
	}
	return s / float64(len(y))
}
