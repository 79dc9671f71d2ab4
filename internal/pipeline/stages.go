package pipeline

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
)

// Choices returns the sorted distinct non-missing values of column.
func Choices(records []dataset.Record, column string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		v, ok := r.Value(column)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MatchValue keeps records whose column equals value exactly.
func MatchValue(records []dataset.Record, column, value string) []dataset.Record {
	out := []dataset.Record{}
	for _, r := range records {
		if v, ok := r.Value(column); ok && v == value {
			out = append(out, r)
		}
	}
	return out
}

// MatchSubstring keeps records whose column contains query, case-insensitively.
// An empty query returns a copy of the input.
func MatchSubstring(records []dataset.Record, column, query string) []dataset.Record {
	if query == "" {
		return append([]dataset.Record{}, records...)
	}
	q := strings.ToLower(query)
	out := []dataset.Record{}
	for _, r := range records {
		if v, ok := r.Value(column); ok && strings.Contains(strings.ToLower(v), q) {
			out = append(out, r)
		}
	}
	return out
}

// NumericBounds returns the min and max of a numeric column. ok is false when
// no record holds a number there.
func NumericBounds(records []dataset.Record, column string) (lo, hi float64, ok bool) {
	for _, r := range records {
		v, present := r.Number(column)
		if !present {
			continue
		}
		if !ok || v < lo {
			lo = v
		}
		if !ok || v > hi {
			hi = v
		}
		ok = true
	}
	return lo, hi, ok
}

// WithinRange keeps records whose numeric column lies in [low, high].
func WithinRange(records []dataset.Record, column string, low, high float64) []dataset.Record {
	out := []dataset.Record{}
	for _, r := range records {
		if v, ok := r.Number(column); ok && v >= low && v <= high {
			out = append(out, r)
		}
	}
	return out
}
