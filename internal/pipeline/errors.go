package pipeline

import "fmt"

// SelectionError reports a structurally invalid FilterSelection.
type SelectionError struct {
	Index  int
	Reason string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid filter %d: %s", e.Index+1, e.Reason)
}

// RangeError reports range bounds with low greater than high.
type RangeError struct {
	Column    string
	Low, High float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s range: low %s is greater than high %s", e.Column, FormatNumber(e.Low), FormatNumber(e.High))
}

// EmptyReason says why a stage produced nothing.
type EmptyReason string

const (
	ReasonNoChoices EmptyReason = "no_choices"
	ReasonNoRange   EmptyReason = "no_range"
	ReasonNoMatch   EmptyReason = "no_match"
)

// EmptySelectionError is the soft terminal condition of a stage: no candidate
// values or nothing left after narrowing. It is carried on the Result and is
// never returned as a pipeline error.
type EmptySelectionError struct {
	Stage  int
	Kind   Kind
	Column string
	Value  string
	Reason EmptyReason
}

func (e *EmptySelectionError) Error() string {
	switch e.Reason {
	case ReasonNoChoices:
		return fmt.Sprintf("no %s values available for this choice", e.Column)
	case ReasonNoRange:
		return fmt.Sprintf("no %s data to compute a range", e.Column)
	default:
		switch e.Kind {
		case KindRange:
			return fmt.Sprintf("no records found with %s in %s", e.Column, e.Value)
		case KindSearch:
			return fmt.Sprintf("no records found with %s containing %q", e.Column, e.Value)
		default:
			return fmt.Sprintf("no records found for %s = %s", e.Column, e.Value)
		}
	}
}

// NotFoundError reports a comparison key with no matching record.
type NotFoundError struct {
	Column string
	Value  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no record with %s = %q", e.Column, e.Value)
}
