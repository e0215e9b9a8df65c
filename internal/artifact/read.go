package artifact

import (
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gopkg.in/yaml.v3"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
)

// ReadScores parses a file written by WriteScores.
func ReadScores(path string) (domain.ScoredPairs, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ScoredPairs{}, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.WithTypes(map[string]series.Type{
		"test": series.Float,
		"pred": series.Float,
	}))
	if df.Err != nil {
		return domain.ScoredPairs{}, &IOError{Op: "decode", Path: path, Err: df.Err}
	}
	actual, err := domain.Column(df, "test")
	if err != nil {
		return domain.ScoredPairs{}, &IOError{Op: "decode", Path: path, Err: err}
	}
	pred, err := domain.Column(df, "pred")
	if err != nil {
		return domain.ScoredPairs{}, &IOError{Op: "decode", Path: path, Err: err}
	}
	return domain.ScoredPairs{Actual: actual, Predicted: pred}, nil
}

// ReadMetrics parses a file written by WriteMetrics.
func ReadMetrics(path string) (domain.Metrics, error) {
	var m domain.Metrics
	if err := readYAML(path, &m); err != nil {
		return domain.Metrics{}, err
	}
	return m, nil
}

// ReadVocabulary parses a file written by WriteVocabulary.
func ReadVocabulary(path string) (domain.Vocabulary, error) {
	var v domain.Vocabulary
	if err := readYAML(path, &v); err != nil {
		return domain.Vocabulary{}, err
	}
	if err := v.Validate(); err != nil {
		return domain.Vocabulary{}, &IOError{Op: "decode", Path: path, Err: err}
	}
	return v, nil
}

// ReadModel decodes a bundle written by WriteModel.
func ReadModel(path string) (*model.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	defer f.Close()

	b, err := model.Load(f)
	if err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	return b, nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return &IOError{Op: "decode", Path: path, Err: fmt.Errorf("yaml: %w", err)}
	}
	return nil
}
