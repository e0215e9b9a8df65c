package model

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

const forestStream = 0xf0e57

// Forest is a bagged ensemble of regression trees. Each tree is grown on a
// bootstrap sample drawn from a PCG source seeded with Seed; the prediction is
// the mean of the trees.
type Forest struct {
	NEstimators int
	MaxDepth    int
	Seed        uint64
	Inputs      int
	Trees       []Tree
}

// Fit grows NEstimators trees. The bootstrap samples are drawn up front, so
// the result does not depend on how the trees are scheduled.
func (f *Forest) Fit(x mat.Matrix, y []float64) error {
	n, d, err := checkTraining(x, y)
	if err != nil {
		return err
	}
	if f.NEstimators < 1 {
		return fmt.Errorf("forest: n_estimators must be positive, got %d", f.NEstimators)
	}

	rng := rand.New(rand.NewPCG(f.Seed, forestStream))
	weights := make([][]float64, f.NEstimators)
	for t := range weights {
		w := make([]float64, n)
		for range n {
			w[rng.IntN(n)]++
		}
		weights[t] = w
	}

	cols := columns(x)
	sorted := presort(cols)
	f.Inputs = d
	f.Trees = make([]Tree, f.NEstimators)

	var wg sync.WaitGroup
	slots := make(chan struct{}, runtime.GOMAXPROCS(0))
	for t := range f.Trees {
		slots <- struct{}{}
		wg.Go(func() {
			defer func() { <-slots }()
			f.Trees[t].MaxDepth = f.MaxDepth
			f.Trees[t].grow(cols, sorted, y, weights[t])
		})
	}
	wg.Wait()
	return nil
}

// Predict averages the tree predictions.
func (f *Forest) Predict(x mat.Matrix) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	n, err := checkColumns(x, f.Inputs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	row := make([]float64, f.Inputs)
	for i := range out {
		mat.Row(row, i, x)
		var s float64
		for t := range f.Trees {
			s += f.Trees[t].predictRow(row)
		}
		out[i] = s / float64(len(f.Trees))
	}
	return out, nil
}
