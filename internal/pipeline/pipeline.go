// Package pipeline implements the cascading filter over a vehicle pricing
// dataset: schema validation, MSRP normalization, then an ordered chain of
// categorical, search and range stages where each stage only sees what the
// previous one kept.
package pipeline

import (
	"log/slog"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/logger"
)

// State is a position in the pipeline's state machine.
type State int

const (
	StateUnvalidated State = iota
	StateSchemaOK
	StateNormalized
	StateFiltering
	StateComplete
	StateEmpty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnvalidated:
		return "unvalidated"
	case StateSchemaOK:
		return "schema_ok"
	case StateNormalized:
		return "normalized"
	case StateFiltering:
		return "filtering"
	case StateComplete:
		return "complete"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the outcome of one stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusEmpty   Status = "empty"
	StatusSkipped Status = "skipped"
)

// StageResult describes one evaluated (or skipped) stage.
type StageResult struct {
	Index  int
	Step   Step
	Status Status

	// Categorical stages: the selectable values derived from the stage input
	// and the value actually applied.
	Choices  []string
	Selected string

	// Range stages: computed bounds of the input and the bounds applied.
	HasBounds bool
	Min, Max  float64
	Low, High float64

	InputRows  int
	OutputRows int
	Empty      *EmptySelectionError
}

// Result is the outcome of a pipeline run. Records is empty unless State is
// StateComplete.
type Result struct {
	State   State
	Dataset *dataset.Dataset
	Stages  []StageResult
	Records []dataset.Record
	Empty   *EmptySelectionError
}

// Rows returns the number of surviving records.
func (r *Result) Rows() int { return len(r.Records) }

// Pipeline runs a FilterSelection against a table or a normalized dataset.
type Pipeline struct {
	required []string
	log      *slog.Logger
}

// New returns a pipeline that requires the given columns. Columns referenced
// by a selection are required in addition.
func New(required []string) *Pipeline {
	return &Pipeline{required: required}
}

// WithLogger sets the logger used for stage diagnostics.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	p.log = l
	return p
}

func (p *Pipeline) logger() *slog.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.Logger
}

// Prepare validates and normalizes a raw table.
func (p *Pipeline) Prepare(t *dataset.Table, sel Selection) (*dataset.Dataset, error) {
	m := &machine{p: p, table: t, sel: sel, state: StateUnvalidated, stop: StateNormalized}
	if err := m.run(); err != nil {
		return nil, err
	}
	return m.ds, nil
}

// Execute runs the whole pipeline from the raw table. Schema, format and
// selection errors are returned; an empty stage is not an error and is
// reported through Result.State and Result.Empty.
func (p *Pipeline) Execute(t *dataset.Table, sel Selection) (*Result, error) {
	m := &machine{p: p, table: t, sel: sel, state: StateUnvalidated}
	err := m.run()
	return m.result(), err
}

// Apply runs the filter stages over an already normalized dataset.
func (p *Pipeline) Apply(ds *dataset.Dataset, sel Selection) (*Result, error) {
	m := &machine{p: p, ds: ds, sel: sel, state: StateNormalized}
	err := m.run()
	return m.result(), err
}

// machine drives the transitions
// Unvalidated -> SchemaOK -> Normalized -> Filtering* -> Complete | Empty,
// with Failed reachable from every state before filtering starts.
type machine struct {
	p     *Pipeline
	table *dataset.Table
	ds    *dataset.Dataset
	sel   Selection
	state State
	stop  State

	next    int
	current []dataset.Record
	stages  []StageResult
	empty   *EmptySelectionError
}

func (m *machine) run() error {
	for {
		if m.stop != StateUnvalidated && m.state == m.stop {
			return nil
		}
		switch m.state {
		case StateUnvalidated:
			required := dataset.MergeColumns(m.p.required, m.sel.Columns()...)
			if err := dataset.Validate(m.table, required); err != nil {
				return m.fail(err)
			}
			m.state = StateSchemaOK
		case StateSchemaOK:
			ds, err := dataset.Normalize(m.table)
			if err != nil {
				return m.fail(err)
			}
			m.ds = ds
			m.state = StateNormalized
		case StateNormalized:
			if err := m.sel.Validate(); err != nil {
				return m.fail(err)
			}
			for _, col := range m.sel.Columns() {
				if !m.ds.HasColumn(col) {
					return m.fail(&dataset.SchemaError{Missing: []string{col}, Required: m.sel.Columns()})
				}
			}
			m.current = m.ds.Records
			m.state = StateFiltering
		case StateFiltering:
			if m.next >= len(m.sel) {
				m.state = StateComplete
				continue
			}
			sr := m.p.runStage(m.next, m.sel[m.next], m.current)
			m.stages = append(m.stages, sr.StageResult)
			m.current = sr.out
			m.next++
			if sr.Status == StatusEmpty {
				m.empty = sr.Empty
				m.state = StateEmpty
			}
		case StateEmpty:
			for i := m.next; i < len(m.sel); i++ {
				m.stages = append(m.stages, StageResult{Index: i, Step: m.sel[i], Status: StatusSkipped})
			}
			m.current = nil
			return nil
		case StateComplete, StateFailed:
			return nil
		}
	}
}

func (m *machine) fail(err error) error {
	m.p.logger().Debug("pipeline failed", "from_state", m.state.String(), "error", err)
	m.state = StateFailed
	return err
}

func (m *machine) result() *Result {
	res := &Result{State: m.state, Dataset: m.ds, Stages: m.stages, Empty: m.empty, Records: []dataset.Record{}}
	if m.state == StateComplete {
		res.Records = m.current
	}
	return res
}

type stageOutput struct {
	StageResult
	out []dataset.Record
}

func (p *Pipeline) runStage(index int, st Step, in []dataset.Record) stageOutput {
	log := logger.WithStage(p.logger(), index, string(st.Kind), st.Column)
	res := StageResult{Index: index, Step: st, Status: StatusOK, InputRows: len(in)}
	var out []dataset.Record

	emptyWith := func(reason EmptyReason, value string) stageOutput {
		res.Status = StatusEmpty
		res.OutputRows = 0
		res.Empty = &EmptySelectionError{Stage: index, Kind: st.Kind, Column: st.Column, Value: value, Reason: reason}
		log.Debug("stage empty", "reason", string(reason), "rows_in", len(in))
		return stageOutput{StageResult: res}
	}

	switch st.Kind {
	case KindCategorical:
		res.Choices = Choices(in, st.Column)
		if len(res.Choices) == 0 {
			return emptyWith(ReasonNoChoices, st.Value)
		}
		res.Selected = st.Value
		if res.Selected == "" {
			res.Selected = res.Choices[0]
		}
		out = MatchValue(in, st.Column, res.Selected)
		if len(out) == 0 {
			return emptyWith(ReasonNoMatch, res.Selected)
		}
	case KindSearch:
		out = MatchSubstring(in, st.Column, st.Value)
		if len(out) == 0 {
			return emptyWith(ReasonNoMatch, st.Value)
		}
	case KindRange:
		lo, hi, ok := NumericBounds(in, st.Column)
		if !ok {
			return emptyWith(ReasonNoRange, "")
		}
		res.HasBounds, res.Min, res.Max = true, lo, hi
		res.Low, res.High = lo, hi
		if st.Low != nil {
			res.Low = *st.Low
		}
		if st.High != nil {
			res.High = *st.High
		}
		out = WithinRange(in, st.Column, res.Low, res.High)
		if len(out) == 0 {
			return emptyWith(ReasonNoMatch, "["+FormatNumber(res.Low)+", "+FormatNumber(res.High)+"]")
		}
	}
	res.OutputRows = len(out)
	log.Debug("stage applied", "rows_in", len(in), "rows_out", len(out))
	return stageOutput{StageResult: res, out: out}
}
