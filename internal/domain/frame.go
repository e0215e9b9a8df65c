package domain

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

// Column returns a numeric column as float64. Missing columns and cells that
// are empty or not numbers are errors.
func Column(df dataframe.DataFrame, name string) ([]float64, error) {
	if !HasColumn(df, name) {
		return nil, &MissingColumnError{Column: name}
	}
	s := df.Col(name)
	vals := s.Float()
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, &ParseError{Column: name, Row: i, Value: s.Elem(i).String(), Reason: "not a number"}
		}
	}
	return vals, nil
}

// Matrix copies the named columns of df into a rows x len(columns) matrix.
func Matrix(df dataframe.DataFrame, columns []string) (*mat.Dense, error) {
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("build matrix: %w", ErrEmptyInput)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("build matrix: no columns: %w", ErrEmptyInput)
	}

	m := mat.NewDense(df.Nrow(), len(columns), nil)
	for j, name := range columns {
		vals, err := Column(df, name)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			m.Set(i, j, v)
		}
	}
	return m, nil
}
