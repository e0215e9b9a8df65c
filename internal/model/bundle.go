package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
)

// Family identifies a model kind. Its string is the model id used in file
// names, configuration keys, and the prediction API.
type Family string

const (
	FamilyPCR Family = "pcr"
	FamilyRF  Family = "rf"
	FamilyGBM Family = "gbm"
)

// Families lists every family in training order.
var Families = []Family{FamilyPCR, FamilyRF, FamilyGBM}

// DisplayName returns the human-readable family name.
func (f Family) DisplayName() string {
	switch f {
	case FamilyPCR:
		return "PCR"
	case FamilyRF:
		return "Random Forest"
	case FamilyGBM:
		return "Gradient Boosting"
	default:
		return string(f)
	}
}

// ParseFamily validates a model id.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown model family %q", s)
}

func init() {
	gob.Register(&PCR{})
	gob.Register(&Forest{})
	gob.Register(&GradientBoosting{})
	gob.Register(&Tree{})
	gob.Register(&LinearRegression{})
}

// Bundle is the persisted form of a trained model: the fitted regressor plus
// everything needed to rebuild its input rows.
type Bundle struct {
	Family     Family
	Features   []string
	Response   string
	Vocabulary domain.Vocabulary
	Model      Regressor
	TrainedAt  time.Time
}

// Predict checks the column count against Features and runs the model.
func (b *Bundle) Predict(x mat.Matrix) ([]float64, error) {
	if b.Model == nil {
		return nil, ErrNotFitted
	}
	if _, d := x.Dims(); d != len(b.Features) {
		return nil, &ShapeError{Op: "bundle features", Want: len(b.Features), Got: d}
	}
	return b.Model.Predict(x)
}

// PredictRow predicts a single row given in Features order.
func (b *Bundle) PredictRow(row []float64) (float64, error) {
	if len(row) != len(b.Features) || len(row) == 0 {
		return 0, &ShapeError{Op: "bundle features", Want: len(b.Features), Got: len(row)}
	}
	out, err := b.Predict(mat.NewDense(1, len(row), row))
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// Save gob-encodes b to w.
func Save(w io.Writer, b *Bundle) error {
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode %s bundle: %w", b.Family, err)
	}
	return nil
}

// Load decodes a bundle written by Save and validates its vocabulary.
func Load(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Model == nil {
		return nil, fmt.Errorf("decode %s bundle: no model", b.Family)
	}
	if err := b.Vocabulary.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s bundle: %w", b.Family, err)
	}
	return &b, nil
}
