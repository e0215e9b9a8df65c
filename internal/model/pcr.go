package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// componentTolerance is the explained-variance cutoff, relative to the
// leading component, below which a component is left out of the regression.
const componentTolerance = 1e-12

// PCR is principal-component regression: standardize, project with PCA,
// then fit least squares on the component scores.
type PCR struct {
	Scaler StandardScaler
	PCA    PCA
	Linear LinearRegression
}

// NewPCR returns an unfitted PCR. nComponents > 0 fixes the component count,
// varianceRatio in (0, 1) selects by explained variance, and zero for both
// keeps every component.
func NewPCR(nComponents int, varianceRatio float64) *PCR {
	return &PCR{PCA: PCA{NComponents: nComponents, VarianceRatio: varianceRatio}}
}

// Fit runs the three stages in order. Components with no variance get a zero
// coefficient, which is the minimum-norm least-squares solution.
func (p *PCR) Fit(x mat.Matrix, y []float64) error {
	if _, _, err := checkTraining(x, y); err != nil {
		return err
	}
	if err := p.Scaler.Fit(x); err != nil {
		return fmt.Errorf("pcr: %w", err)
	}
	scaled, err := p.Scaler.Transform(x)
	if err != nil {
		return fmt.Errorf("pcr scale: %w", err)
	}
	if err := p.PCA.Fit(scaled); err != nil {
		return fmt.Errorf("pcr: %w", err)
	}
	scores, err := p.PCA.Transform(scaled)
	if err != nil {
		return fmt.Errorf("pcr project: %w", err)
	}

	keep := p.informative()
	coef := make([]float64, p.PCA.K)
	if len(keep) == 0 {
		p.Linear = LinearRegression{Coef: coef, Intercept: mean(y)}
		return nil
	}

	n, _ := scores.Dims()
	sub := mat.NewDense(n, len(keep), nil)
	for c, k := range keep {
		sub.SetCol(c, mat.Col(nil, k, scores))
	}
	var ols LinearRegression
	if err := ols.Fit(sub, y); err != nil {
		return fmt.Errorf("pcr regress: %w", err)
	}
	for c, k := range keep {
		coef[k] = ols.Coef[c]
	}
	p.Linear = LinearRegression{Coef: coef, Intercept: ols.Intercept}
	return nil
}

func (p *PCR) informative() []int {
	vars := p.PCA.ExplainedVariance
	if len(vars) == 0 || !(vars[0] > 0) {
		return nil
	}
	var keep []int
	for k, v := range vars {
		if v > vars[0]*componentTolerance {
			keep = append(keep, k)
		}
	}
	return keep
}

// Predict applies the fitted stages to x.
func (p *PCR) Predict(x mat.Matrix) ([]float64, error) {
	scaled, err := p.Scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	scores, err := p.PCA.Transform(scaled)
	if err != nil {
		return nil, err
	}
	return p.Linear.Predict(scores)
}
