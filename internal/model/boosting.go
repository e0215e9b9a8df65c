package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"
)

// maxLeafDepth caps the leaf budget derived from MaxDepth at LightGBM's
// num_leaves limit of 2^17.
const maxLeafDepth = 17

// GradientBoosting is a least-squares gradient-boosted tree ensemble trained
// by scigo's LightGBM regressor. MaxDepth > 0 bounds every tree and sets the
// leaf budget to 2^MaxDepth; zero leaves depth unbounded.
//
// A fitted model gob-encodes as its LightGBM text model.
type GradientBoosting struct {
	NEstimators  int
	MaxDepth     int
	LearningRate float64
	Inputs       int

	reg *lightgbm.LGBMRegressor
}

// Fit runs NEstimators boosting rounds.
func (g *GradientBoosting) Fit(x mat.Matrix, y []float64) error {
	n, d, err := checkTraining(x, y)
	if err != nil {
		return err
	}
	if g.NEstimators < 1 {
		return fmt.Errorf("boosting: n_estimators must be positive, got %d", g.NEstimators)
	}
	if !(g.LearningRate > 0) {
		return fmt.Errorf("boosting: learning_rate must be positive, got %v", g.LearningRate)
	}

	reg := lightgbm.NewLGBMRegressor()
	reg.NumIterations = g.NEstimators
	reg.LearningRate = g.LearningRate
	if g.MaxDepth > 0 {
		reg.MaxDepth = g.MaxDepth
		reg.NumLeaves = 1 << min(g.MaxDepth, maxLeafDepth)
	} else {
		reg.MaxDepth = -1
	}
	if err := reg.Fit(x, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("boosting fit: %w", err)
	}

	g.Inputs = d
	g.reg = reg
	return nil
}

// Predict returns the boosted prediction for every row of x.
func (g *GradientBoosting) Predict(x mat.Matrix) ([]float64, error) {
	if g.reg == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkColumns(x, g.Inputs); err != nil {
		return nil, err
	}
	out, err := g.reg.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("boosting predict: %w", err)
	}
	return mat.Col(nil, 0, out), nil
}

type boostingState struct {
	NEstimators  int
	MaxDepth     int
	LearningRate float64
	Inputs       int
	Booster      []byte
}

// GobEncode writes the hyperparameters and the LightGBM text model.
func (g *GradientBoosting) GobEncode() ([]byte, error) {
	if g.reg == nil {
		return nil, ErrNotFitted
	}
	booster, err := exportBooster(g.reg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(boostingState{
		NEstimators:  g.NEstimators,
		MaxDepth:     g.MaxDepth,
		LearningRate: g.LearningRate,
		Inputs:       g.Inputs,
		Booster:      booster,
	})
	if err != nil {
		return nil, fmt.Errorf("encode boosting state: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode restores a model written by GobEncode.
func (g *GradientBoosting) GobDecode(data []byte) error {
	var s boostingState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("decode boosting state: %w", err)
	}
	reg, err := importBooster(s.Booster)
	if err != nil {
		return err
	}
	*g = GradientBoosting{
		NEstimators:  s.NEstimators,
		MaxDepth:     s.MaxDepth,
		LearningRate: s.LearningRate,
		Inputs:       s.Inputs,
		reg:          reg,
	}
	return nil
}

// LightGBM persists models as text files; the booster bytes travel inside the
// bundle, so both directions go through a scratch directory.
func exportBooster(reg *lightgbm.LGBMRegressor) ([]byte, error) {
	dir, err := os.MkdirTemp("", "gbm-export-*")
	if err != nil {
		return nil, fmt.Errorf("export booster: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "model.txt")
	if err := reg.SaveModel(path); err != nil {
		return nil, fmt.Errorf("export booster: %w", err)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export booster: %w", err)
	}
	return text, nil
}

func importBooster(text []byte) (*lightgbm.LGBMRegressor, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("import booster: %w", ErrNotFitted)
	}
	dir, err := os.MkdirTemp("", "gbm-import-*")
	if err != nil {
		return nil, fmt.Errorf("import booster: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "model.txt")
	if err := os.WriteFile(path, text, 0o600); err != nil {
		return nil, fmt.Errorf("import booster: %w", err)
	}
	reg := lightgbm.NewLGBMRegressor()
	if err := reg.LoadModel(path); err != nil {
		return nil, fmt.Errorf("import booster: %w", err)
	}
	return reg, nil
}
