package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPrice is wrapped by FormatError when an MSRP cell does not reduce
// to a non-negative integer.
var ErrInvalidPrice = errors.New("not a non-negative integer price")

// SchemaError reports required columns absent from a dataset header.
type SchemaError struct {
	Missing  []string
	Required []string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
	if len(e.Required) > 0 {
		msg += fmt.Sprintf(" (dataset must contain: %s)", strings.Join(e.Required, ", "))
	}
	return msg
}

// FormatError reports an MSRP value that could not be cleaned to an integer.
// One bad value rejects the whole dataset.
type FormatError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s value %q in row %d: %v", e.Column, e.Value, e.Row, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
