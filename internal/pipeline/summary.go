package pipeline

import (
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
)

// NumericSummary describes a numeric column over a record set.
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes min/max/mean over the present numeric values of column.
// ok is false when there are none.
func Summarize(records []dataset.Record, column string) (NumericSummary, bool) {
	s := NumericSummary{Column: column}
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.Number(column); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return s, false
	}
	s.Count = len(vals)
	s.Min, s.Max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	if len(vals) == 1 {
		s.Mean = vals[0]
		return s, true
	}
	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	return s, true
}
