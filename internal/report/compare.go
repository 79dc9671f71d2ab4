package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/KaramelBytes/msrp-cli/internal/utils"
)

// ComparisonReport shows two records side by side.
type ComparisonReport struct {
	Key     string     `json:"key"`
	Left    string     `json:"left"`
	Right   string     `json:"right"`
	Columns []string   `json:"columns"`
	Values  [][]string `json:"values"`
}

// NewComparison lays out the compared records over columns.
func NewComparison(cmp *pipeline.Comparison, columns []string) *ComparisonReport {
	r := &ComparisonReport{Key: cmp.Column, Columns: columns}
	r.Left, _ = cmp.Left.Value(cmp.Column)
	r.Right, _ = cmp.Right.Value(cmp.Column)
	for _, c := range columns {
		l, _ := cmp.Left.Value(c)
		rv, _ := cmp.Right.Value(c)
		r.Values = append(r.Values, []string{l, rv})
	}
	return r
}

// JSON renders the comparison as indented JSON.
func (r *ComparisonReport) JSON() ([]byte, error) { return utils.PrettyJSON(r) }

// Markdown renders the comparison as a three-column table.
func (r *ComparisonReport) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Compare %s: %s vs %s\n\n", r.Key, safeVal(r.Left), safeVal(r.Right)))
	rows := make([][]string, len(r.Columns))
	for i, c := range r.Columns {
		rows[i] = []string{c, r.Values[i][0], r.Values[i][1]}
	}
	writeTable(&b, []string{"Field", r.Left, r.Right}, rows, 0)
	return b.String()
}
