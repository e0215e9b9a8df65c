package domain

import (
	"fmt"
	"slices"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// VocabularyVersion identifies the indicator naming scheme. Bump it when
// IndicatorName changes so stale bundles are rejected instead of mis-encoded.
const VocabularyVersion = 1

// Vocabulary is the ordered category list of every categorical column.
type Vocabulary struct {
	Version    int                 `yaml:"version" json:"version"`
	Categories map[string][]string `yaml:"categories" json:"categories"`
}

// IndicatorName returns the one-hot column name for value of column.
func IndicatorName(column, value string) string {
	if column == ColAirline {
		return value
	}
	return column + "_ohe_" + value
}

// DeriveVocabulary collects the sorted distinct values of each categorical
// column in df. Missing cells are not categories.
func DeriveVocabulary(df dataframe.DataFrame) (Vocabulary, error) {
	if err := requireColumns(df, CategoricalColumns...); err != nil {
		return Vocabulary{}, err
	}

	v := Vocabulary{
		Version:    VocabularyVersion,
		Categories: make(map[string][]string, len(CategoricalColumns)),
	}
	for _, col := range CategoricalColumns {
		s := df.Col(col)
		seen := make(map[string]struct{})
		for i := 0; i < s.Len(); i++ {
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			seen[e.String()] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		v.Categories[col] = cats
	}
	return v, nil
}

// Validate checks the version and that every categorical column has a
// sorted, duplicate-free category list.
func (v Vocabulary) Validate() error {
	if v.Version != VocabularyVersion {
		return fmt.Errorf("vocabulary version %d, want %d", v.Version, VocabularyVersion)
	}
	for _, col := range CategoricalColumns {
		cats, ok := v.Categories[col]
		if !ok {
			return fmt.Errorf("vocabulary has no categories for %q", col)
		}
		for i := 1; i < len(cats); i++ {
			if cats[i-1] >= cats[i] {
				return fmt.Errorf("vocabulary for %q is not sorted and unique at %q", col, cats[i])
			}
		}
	}
	return nil
}

// Columns returns every indicator column name in encoding order.
func (v Vocabulary) Columns() []string {
	var out []string
	for _, col := range CategoricalColumns {
		for _, c := range v.Categories[col] {
			out = append(out, IndicatorName(col, c))
		}
	}
	return out
}

// Contains reports whether value is a known category of column.
func (v Vocabulary) Contains(column, value string) bool {
	_, found := slices.BinarySearch(v.Categories[column], value)
	return found
}

// Encode returns the indicator names of column and their one-hot values for
// value. An unknown value is a ParseError.
func (v Vocabulary) Encode(column, value string) ([]string, []float64, error) {
	cats, ok := v.Categories[column]
	if !ok {
		return nil, nil, &MissingColumnError{Column: column}
	}
	idx, found := slices.BinarySearch(cats, value)
	if !found {
		return nil, nil, &ParseError{Column: column, Row: -1, Value: value, Reason: "category not in vocabulary"}
	}

	names := make([]string, len(cats))
	values := make([]float64, len(cats))
	for i, c := range cats {
		names[i] = IndicatorName(column, c)
	}
	values[idx] = 1
	return names, values, nil
}
