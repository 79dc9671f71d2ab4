package pipeline

import (
	"fmt"
	"strconv"
)

// Kind identifies what a filter step does.
type Kind string

const (
	KindCategorical Kind = "categorical"
	KindSearch      Kind = "search"
	KindRange       Kind = "range"
)

// Step is one user choice in a FilterSelection.
type Step struct {
	Kind   Kind
	Column string
	// Value is the chosen category for categorical steps (empty picks the
	// first available choice) and the query for search steps.
	Value string
	// Low and High bound range steps; nil means the computed min or max.
	Low  *float64
	High *float64
}

// Categorical narrows to records whose column equals value.
func Categorical(column, value string) Step {
	return Step{Kind: KindCategorical, Column: column, Value: value}
}

// Search keeps records whose column contains query, ignoring case.
func Search(column, query string) Step {
	return Step{Kind: KindSearch, Column: column, Value: query}
}

// Range keeps records whose numeric column lies in [low, high].
func Range(column string, low, high *float64) Step {
	return Step{Kind: KindRange, Column: column, Low: low, High: high}
}

// Bound returns a pointer to v, for Range bounds.
func Bound(v float64) *float64 { return &v }

func (s Step) String() string {
	switch s.Kind {
	case KindCategorical:
		if s.Value == "" {
			return s.Column + " = (first)"
		}
		return fmt.Sprintf("%s = %s", s.Column, s.Value)
	case KindSearch:
		return fmt.Sprintf("%s contains %q", s.Column, s.Value)
	case KindRange:
		return fmt.Sprintf("%s in [%s, %s]", s.Column, boundString(s.Low, "min"), boundString(s.High, "max"))
	default:
		return string(s.Kind)
	}
}

func boundString(b *float64, fallback string) string {
	if b == nil {
		return fallback
	}
	return FormatNumber(*b)
}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Selection is an ordered list of steps applied left to right.
type Selection []Step

// Columns lists the distinct columns the selection reads, in order.
func (s Selection) Columns() []string {
	var out []string
	seen := map[string]struct{}{}
	for _, st := range s {
		if _, ok := seen[st.Column]; ok {
			continue
		}
		seen[st.Column] = struct{}{}
		out = append(out, st.Column)
	}
	return out
}

// Validate checks the selection's structure. Range steps must follow every
// categorical step and carry bounds with low <= high.
func (s Selection) Validate() error {
	sawRange := false
	for i, st := range s {
		if st.Column == "" {
			return &SelectionError{Index: i, Reason: "column is required"}
		}
		switch st.Kind {
		case KindCategorical:
			if sawRange {
				return &SelectionError{Index: i, Reason: fmt.Sprintf("categorical filter on %s must come before range filters", st.Column)}
			}
		case KindSearch:
		case KindRange:
			sawRange = true
			if st.Low != nil && st.High != nil && *st.Low > *st.High {
				return &RangeError{Column: st.Column, Low: *st.Low, High: *st.High}
			}
		default:
			return &SelectionError{Index: i, Reason: fmt.Sprintf("unknown filter kind %q", st.Kind)}
		}
	}
	return nil
}
