package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects centered rows onto their leading principal directions.
//
// NComponents > 0 keeps exactly that many directions. Otherwise a
// VarianceRatio in (0, 1) keeps the fewest directions whose explained
// variance reaches the ratio, and zero for both keeps every direction.
type PCA struct {
	NComponents   int
	VarianceRatio float64

	Mean              []float64
	Components        []float64 // len(Mean) x K, row-major
	K                 int
	ExplainedVariance []float64
}

// Fit computes the principal directions of x.
func (p *PCA) Fit(x mat.Matrix) error {
	n, d := x.Dims()
	if n < 2 {
		return fmt.Errorf("pca: need at least 2 rows, got %d", n)
	}

	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		return errors.New("pca: decomposition failed")
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	k, err := p.keep(vars)
	if err != nil {
		return err
	}

	p.Mean = make([]float64, d)
	for j := range p.Mean {
		p.Mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	p.K = k
	p.Components = make([]float64, d*k)
	for i := 0; i < d; i++ {
		for j := 0; j < k; j++ {
			p.Components[i*k+j] = vecs.At(i, j)
		}
	}
	p.ExplainedVariance = append([]float64(nil), vars[:k]...)
	return nil
}

func (p *PCA) keep(vars []float64) (int, error) {
	switch {
	case p.NComponents > 0:
		if p.NComponents > len(vars) {
			return 0, fmt.Errorf("pca: n_components %d exceeds %d available", p.NComponents, len(vars))
		}
		return p.NComponents, nil
	case p.VarianceRatio > 0:
		var total float64
		for _, v := range vars {
			total += v
		}
		if total == 0 {
			return 1, nil
		}
		var cum float64
		for i, v := range vars {
			cum += v
			if cum/total >= p.VarianceRatio {
				return i + 1, nil
			}
		}
		return len(vars), nil
	default:
		return len(vars), nil
	}
}

// Transform returns the component scores of x.
func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	if p.K == 0 {
		return nil, ErrNotFitted
	}
	n, err := checkColumns(x, len(p.Mean))
	if err != nil {
		return nil, err
	}

	centered := mat.NewDense(n, len(p.Mean), nil)
	centered.Apply(func(_, j int, v float64) float64 { return v - p.Mean[j] }, x)

	out := mat.NewDense(n, p.K, nil)
	out.Mul(centered, mat.NewDense(len(p.Mean), p.K, p.Components))
	return out, nil
}
