package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for dataset loading failures.
var (
	ErrMalformedDataset = errors.New("malformed dataset")
	ErrMissingColumn    = errors.New("missing column")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrEmptyValue       = errors.New("empty value")
)

// MalformedDatasetError reports the cell that made a load fail. Row is the
// 1-based data row in file order (the header is row 0).
type MalformedDatasetError struct {
	Row     int
	Column  string
	Value   string
	Wrapped error
}

func (e *MalformedDatasetError) Error() string {
	if e.Row <= 0 {
		return fmt.Sprintf("%s: %s: %s", ErrMalformedDataset, e.Wrapped, e.Column)
	}
	return fmt.Sprintf("%s: %s: row %d column %q (value=%q)", ErrMalformedDataset, e.Wrapped, e.Row, e.Column, e.Value)
}

func (e *MalformedDatasetError) Unwrap() []error { return []error{ErrMalformedDataset, e.Wrapped} }

// NewMalformedDatasetError creates a MalformedDatasetError.
func NewMalformedDatasetError(row int, column, value string, wrapped error) *MalformedDatasetError {
	return &MalformedDatasetError{Row: row, Column: column, Value: value, Wrapped: wrapped}
}
