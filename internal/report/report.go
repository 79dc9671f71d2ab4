// Package report renders pipeline results as Markdown or JSON.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/KaramelBytes/msrp-cli/internal/utils"
)

// DefaultColumns are shown when no display columns are configured.
var DefaultColumns = []string{dataset.ColMake, dataset.ColModel, dataset.ColType, dataset.ColMSRP}

// maxChoices limits choice lists in Markdown; JSON always has all of them.
const maxChoices = 12

// Options controls what a filter report includes.
type Options struct {
	Columns   []string
	ShowTable bool
	// MaxRows caps table rows in Markdown; 0 means unlimited.
	MaxRows int
	// SummaryColumn gets a min/max/mean line when set.
	SummaryColumn string
}

// Report is the rendered form of a pipeline run.
type Report struct {
	Dataset     string                   `json:"dataset"`
	TotalRows   int                      `json:"total_rows"`
	State       string                   `json:"state"`
	Stages      []Stage                  `json:"stages"`
	MatchedRows int                      `json:"matched_rows"`
	Columns     []string                 `json:"columns"`
	Rows        [][]string               `json:"rows,omitempty"`
	Summary     *pipeline.NumericSummary `json:"summary,omitempty"`
	Empty       string                   `json:"empty,omitempty"`
	Notes       []string                 `json:"notes,omitempty"`

	maxRows int
}

// Stage is one filter step in a report.
type Stage struct {
	Index    int      `json:"index"`
	Filter   string   `json:"filter"`
	Kind     string   `json:"kind"`
	Column   string   `json:"column"`
	Status   string   `json:"status"`
	Choices  []string `json:"choices,omitempty"`
	Selected string   `json:"selected,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Low      *float64 `json:"low,omitempty"`
	High     *float64 `json:"high,omitempty"`
	RowsIn   int      `json:"rows_in"`
	RowsOut  int      `json:"rows_out"`
}

// New builds a report from a completed or empty pipeline result.
func New(res *pipeline.Result, opt Options) *Report {
	r := &Report{State: res.State.String(), MatchedRows: res.Rows(), maxRows: opt.MaxRows}
	if res.Dataset != nil {
		r.Dataset = res.Dataset.Name
		r.TotalRows = res.Dataset.Len()
	}
	for _, st := range res.Stages {
		s := Stage{
			Index:   st.Index + 1,
			Filter:  st.Step.String(),
			Kind:    string(st.Step.Kind),
			Column:  st.Step.Column,
			Status:  string(st.Status),
			Choices: st.Choices,
			RowsIn:  st.InputRows,
			RowsOut: st.OutputRows,
		}
		if st.Step.Kind == pipeline.KindCategorical {
			s.Selected = st.Selected
		}
		if st.HasBounds {
			s.Min, s.Max = ptr(st.Min), ptr(st.Max)
			s.Low, s.High = ptr(st.Low), ptr(st.High)
		}
		r.Stages = append(r.Stages, s)
	}
	if res.Empty != nil {
		r.Empty = res.Empty.Error()
	}

	cols := opt.Columns
	if len(cols) == 0 {
		cols = DefaultColumns
	}
	for _, c := range cols {
		if res.Dataset != nil && !res.Dataset.HasColumn(c) {
			r.Notes = append(r.Notes, fmt.Sprintf("column %s is not in the dataset and is not shown", c))
			continue
		}
		r.Columns = append(r.Columns, c)
	}
	if opt.ShowTable {
		r.Rows = [][]string{}
		for _, rec := range res.Records {
			row := make([]string, len(r.Columns))
			for i, c := range r.Columns {
				row[i], _ = rec.Value(c)
			}
			r.Rows = append(r.Rows, row)
		}
	}
	if opt.SummaryColumn != "" {
		if s, ok := pipeline.Summarize(res.Records, opt.SummaryColumn); ok {
			r.Summary = &s
		}
	}
	return r
}

func ptr(v float64) *float64 { return &v }

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) { return utils.PrettyJSON(r) }

// Markdown renders the report for terminals and docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# MSRP Filter Report\n\n")
	if r.Dataset != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Dataset))
	}
	b.WriteString(fmt.Sprintf("Rows: %d of %d\n", r.MatchedRows, r.TotalRows))
	b.WriteString(fmt.Sprintf("State: %s\n", r.State))

	if len(r.Stages) > 0 {
		b.WriteString("\n## Filters\n\n")
		b.WriteString("| # | Filter | Choices | Selected | Rows in | Rows out | Status |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Stages {
			b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d | %d | %s |\n",
				s.Index, safeVal(s.Filter), safeVal(choiceList(s.Choices)), safeVal(selected(s)), s.RowsIn, s.RowsOut, s.Status))
		}
	}

	var ranges []Stage
	for _, s := range r.Stages {
		if s.Min != nil {
			ranges = append(ranges, s)
		}
	}
	if len(ranges) > 0 {
		b.WriteString("\n## Range\n\n")
		for _, s := range ranges {
			b.WriteString(fmt.Sprintf("- %s: available %s to %s, selected %s to %s\n", s.Column,
				pipeline.FormatNumber(*s.Min), pipeline.FormatNumber(*s.Max),
				pipeline.FormatNumber(*s.Low), pipeline.FormatNumber(*s.High)))
		}
	}

	if r.Summary != nil {
		s := r.Summary
		b.WriteString("\n## Summary\n\n")
		b.WriteString(fmt.Sprintf("- %s: n=%d, min %s, max %s, mean %.2f\n", s.Column, s.Count,
			pipeline.FormatNumber(s.Min), pipeline.FormatNumber(s.Max), s.Mean))
	}

	if r.Empty != "" {
		b.WriteString("\n⚠ No data available for this choice: ")
		b.WriteString(r.Empty)
		b.WriteString("\n")
	}

	if len(r.Rows) > 0 {
		b.WriteString("\n## Vehicles\n\n")
		writeTable(&b, r.Columns, r.Rows, r.maxRows)
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func selected(s Stage) string {
	switch {
	case s.Selected != "":
		return s.Selected
	case s.Low != nil:
		return "[" + pipeline.FormatNumber(*s.Low) + ", " + pipeline.FormatNumber(*s.High) + "]"
	default:
		return ""
	}
}

func choiceList(c []string) string {
	if len(c) <= maxChoices {
		return strings.Join(c, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(c[:maxChoices], ", "), len(c)-maxChoices)
}

func writeTable(b *strings.Builder, header []string, rows [][]string, limit int) {
	b.WriteString("| ")
	for i, h := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(h))
	}
	b.WriteString(" |\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for n, row := range rows {
		if limit > 0 && n >= limit {
			b.WriteString(fmt.Sprintf("\n(%d more rows not shown)\n", len(rows)-limit))
			break
		}
		b.WriteString("| ")
		for i, v := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			if len(v) > 80 {
				v = v[:77] + "..."
			}
			b.WriteString(safeVal(v))
		}
		b.WriteString(" |\n")
	}
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " "), "|", "/")
}
