package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when an operation receives no rows to work on.
var ErrEmptyInput = errors.New("empty input")

// MissingColumnError reports a required column absent from a frame.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// ParseError reports a cell that could not be interpreted. Row is the
// zero-based data row index, or -1 when the error is not tied to a row.
type ParseError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("parse %s value %q: %s", e.Column, e.Value, e.Reason)
	}
	return fmt.Sprintf("parse %s row %d value %q: %s", e.Column, e.Row, e.Value, e.Reason)
}

// InvalidFractionError reports a test fraction outside the open interval (0, 1).
type InvalidFractionError struct {
	Fraction float64
}

func (e *InvalidFractionError) Error() string {
	return fmt.Sprintf("test fraction must be strictly between 0 and 1, got %v", e.Fraction)
}

// InvalidValueError reports a scored pair set that cannot be evaluated.
type InvalidValueError struct {
	Series string
	Index  int
	Reason string
}

func (e *InvalidValueError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Series, e.Reason)
	}
	return fmt.Sprintf("invalid %s[%d]: %s", e.Series, e.Index, e.Reason)
}
