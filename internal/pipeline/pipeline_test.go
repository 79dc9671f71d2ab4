package pipeline_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
)

const scenarioCSV = `Make,Model,Type,MSRP
Acura,TSX,Sedan,"$30,000"
Acura,MDX,SUV,"$35,000"
BMW,330i,Sedan,"$40,000"
`

const carsCSV = `Make,Model,Type,Category,MSRP,Horsepower
Acura,MDX,SUV,Family,"$36,945",265
Acura,RSX,Sedan,Sport,"$23,820",200
Acura,TL,Sedan,Family,"$33,195",270
Audi,A4,Sedan,Family,"$25,940",170
Audi,TT,Sports,Sport,"$35,940",225
BMW,X5,SUV,,"$39,195",225
BMW,M3,Sports,Sport,"$48,195",333
Kia,Rio,Sedan,NA,"$10,280",
`

func table(t *testing.T, content string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(content), "cars.csv", ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func basic(t *testing.T) []string {
	t.Helper()
	cols, err := dataset.Profile("basic")
	if err != nil {
		t.Fatal(err)
	}
	return cols
}

func msrps(records []dataset.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.MSRP)
	}
	return out
}

func TestScenarioMakeThenType(t *testing.T) {
	p := pipeline.New(basic(t))
	tbl := table(t, scenarioCSV)

	res, err := p.Execute(tbl, pipeline.Selection{pipeline.Categorical("Make", "Acura")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.State != pipeline.StateComplete || res.Rows() != 2 {
		t.Fatalf("after Make=Acura: state=%s rows=%d", res.State, res.Rows())
	}

	res, err = p.Execute(tbl, pipeline.Selection{
		pipeline.Categorical("Make", "Acura"),
		pipeline.Categorical("Type", "Sedan"),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := msrps(res.Records); !reflect.DeepEqual(got, []int64{30000}) {
		t.Fatalf("after Type=Sedan got %v", got)
	}
	if want := []string{"SUV", "Sedan"}; !reflect.DeepEqual(res.Stages[1].Choices, want) {
		t.Fatalf("Type choices = %v, want %v", res.Stages[1].Choices, want)
	}
}

func TestScenarioMakeThenRange(t *testing.T) {
	p := pipeline.New(basic(t))
	res, err := p.Execute(table(t, scenarioCSV), pipeline.Selection{
		pipeline.Categorical("Make", "Acura"),
		pipeline.Range("MSRP", pipeline.Bound(32000), pipeline.Bound(40000)),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := msrps(res.Records); !reflect.DeepEqual(got, []int64{35000}) {
		t.Fatalf("got %v, want [35000]", got)
	}
	rs := res.Stages[1]
	if !rs.HasBounds || rs.Min != 30000 || rs.Max != 35000 {
		t.Fatalf("range bounds = %+v, want min 30000 max 35000 from the narrowed set", rs)
	}
}

func TestScenarioMissingCategory(t *testing.T) {
	required, err := dataset.Profile("category")
	if err != nil {
		t.Fatal(err)
	}
	res, err := pipeline.New(required).Execute(table(t, scenarioCSV), nil)
	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if !reflect.DeepEqual(se.Missing, []string{"Category"}) {
		t.Fatalf("missing = %v", se.Missing)
	}
	if res.State != pipeline.StateFailed || len(res.Stages) != 0 {
		t.Fatalf("state=%s stages=%d", res.State, len(res.Stages))
	}
}

func TestFormatErrorAbortsBeforeStages(t *testing.T) {
	csv := "Make,Model,Type,MSRP\nAcura,TSX,Sedan,$30000\nBMW,X5,SUV,abc\n"
	res, err := pipeline.New(basic(t)).Execute(table(t, csv), pipeline.Selection{pipeline.Categorical("Make", "Acura")})
	var fe *dataset.FormatError
	if !errors.As(err, &fe) || fe.Row != 2 {
		t.Fatalf("err = %v, want FormatError on row 2", err)
	}
	if res.State != pipeline.StateFailed || len(res.Stages) != 0 || res.Rows() != 0 {
		t.Fatalf("unexpected result after failure: %+v", res)
	}
}

func TestSelectionColumnsAreRequired(t *testing.T) {
	_, err := pipeline.New(basic(t)).Execute(table(t, scenarioCSV), pipeline.Selection{pipeline.Categorical("Category", "Family")})
	var se *dataset.SchemaError
	if !errors.As(err, &se) || se.Missing[0] != "Category" {
		t.Fatalf("err = %v, want SchemaError naming Category", err)
	}
}

func TestDeterminism(t *testing.T) {
	p := pipeline.New(basic(t))
	tbl := table(t, carsCSV)
	sel := pipeline.Selection{
		pipeline.Categorical("Make", "Acura"),
		pipeline.Search("Model", "t"),
		pipeline.Range("MSRP", nil, nil),
	}
	first, err := p.Execute(tbl, sel)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.Execute(tbl, sel)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first.Records, again.Records) || !reflect.DeepEqual(first.Stages, again.Stages) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestMonotonicNarrowing(t *testing.T) {
	res, err := pipeline.New(basic(t)).Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Categorical("Type", "Sedan"),
		pipeline.Categorical("Make", "Acura"),
		pipeline.Search("Model", ""),
		pipeline.Range("MSRP", pipeline.Bound(20000), nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	prev := res.Dataset.Len()
	for _, st := range res.Stages {
		if st.InputRows != prev {
			t.Fatalf("stage %d input %d, previous output %d", st.Index, st.InputRows, prev)
		}
		if st.OutputRows > st.InputRows {
			t.Fatalf("stage %d grew: %d -> %d", st.Index, st.InputRows, st.OutputRows)
		}
		prev = st.OutputRows
	}
	if prev != res.Rows() {
		t.Fatalf("final rows %d, last stage %d", res.Rows(), prev)
	}
}

func TestChoicesComeFromPreviousStage(t *testing.T) {
	res, err := pipeline.New(basic(t)).Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Categorical("Make", "BMW"),
		pipeline.Categorical("Category", ""),
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Acura", "Audi", "BMW", "Kia"}; !reflect.DeepEqual(res.Stages[0].Choices, want) {
		t.Fatalf("Make choices = %v", res.Stages[0].Choices)
	}
	// BMW X5 has an empty Category, which is never a choice.
	if want := []string{"Sport"}; !reflect.DeepEqual(res.Stages[1].Choices, want) {
		t.Fatalf("Category choices = %v, want %v", res.Stages[1].Choices, want)
	}
	if res.Stages[1].Selected != "Sport" || res.Rows() != 1 {
		t.Fatalf("empty value should pick the first choice: %+v", res.Stages[1])
	}
}

func TestEmptyShortCircuit(t *testing.T) {
	res, err := pipeline.New(basic(t)).Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Categorical("Make", "Tesla"),
		pipeline.Categorical("Type", "Sedan"),
		pipeline.Range("MSRP", nil, nil),
	})
	if err != nil {
		t.Fatalf("empty selection must not be an error: %v", err)
	}
	if res.State != pipeline.StateEmpty || res.Rows() != 0 {
		t.Fatalf("state=%s rows=%d", res.State, res.Rows())
	}
	if res.Empty == nil || res.Empty.Stage != 0 || res.Empty.Reason != pipeline.ReasonNoMatch {
		t.Fatalf("empty = %+v", res.Empty)
	}
	if len(res.Stages) != 3 {
		t.Fatalf("want 3 stage results, got %d", len(res.Stages))
	}
	for _, st := range res.Stages[1:] {
		if st.Status != pipeline.StatusSkipped || st.Choices != nil || st.HasBounds {
			t.Fatalf("stage %d evaluated after empty: %+v", st.Index, st)
		}
	}
}

func TestEmptyReasons(t *testing.T) {
	p := pipeline.New(basic(t))

	res, err := p.Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Categorical("Make", "Kia"),
		pipeline.Categorical("Category", ""),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Empty == nil || res.Empty.Reason != pipeline.ReasonNoChoices {
		t.Fatalf("want no_choices, got %+v", res.Empty)
	}

	res, err = p.Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Categorical("Make", "Kia"),
		pipeline.Range("Horsepower", nil, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Empty == nil || res.Empty.Reason != pipeline.ReasonNoRange {
		t.Fatalf("want no_range, got %+v", res.Empty)
	}
	if !strings.Contains(res.Empty.Error(), "Horsepower") {
		t.Fatalf("message = %q", res.Empty.Error())
	}
}

func TestRangeInclusive(t *testing.T) {
	res, err := pipeline.New(basic(t)).Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Range("MSRP", pipeline.Bound(23820), pipeline.Bound(35940)),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{23820, 33195, 25940, 35940}
	if got := msrps(res.Records); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRangeDefaultsToBounds(t *testing.T) {
	res, err := pipeline.New(basic(t)).Execute(table(t, carsCSV), pipeline.Selection{
		pipeline.Range("Horsepower", nil, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	st := res.Stages[0]
	if st.Low != 170 || st.High != 333 {
		t.Fatalf("bounds = [%v, %v]", st.Low, st.High)
	}
	// Kia has no horsepower and drops out.
	if res.Rows() != 7 {
		t.Fatalf("rows = %d, want 7", res.Rows())
	}
}

func TestSearch(t *testing.T) {
	p := pipeline.New(basic(t))
	tbl := table(t, carsCSV)

	res, err := p.Execute(tbl, pipeline.Selection{pipeline.Search("Model", "")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Rows() != 8 {
		t.Fatalf("empty search should be identity, got %d rows", res.Rows())
	}

	res, err = p.Execute(tbl, pipeline.Selection{pipeline.Search("Model", "x")})
	if err != nil {
		t.Fatal(err)
	}
	if got := msrps(res.Records); !reflect.DeepEqual(got, []int64{36945, 23820, 39195}) {
		t.Fatalf("case-insensitive search got %v", got)
	}

	// NA category never matches even though "na" is the query.
	res, err = p.Execute(tbl, pipeline.Selection{pipeline.Search("Category", "na")})
	if err != nil {
		t.Fatal(err)
	}
	if res.State != pipeline.StateEmpty {
		t.Fatalf("missing values matched a search: %v", msrps(res.Records))
	}
}

func TestSelectionValidation(t *testing.T) {
	cases := []struct {
		name string
		sel  pipeline.Selection
		want any
	}{
		{"low above high", pipeline.Selection{pipeline.Range("MSRP", pipeline.Bound(5), pipeline.Bound(1))}, &pipeline.RangeError{}},
		{"categorical after range", pipeline.Selection{pipeline.Range("MSRP", nil, nil), pipeline.Categorical("Make", "")}, &pipeline.SelectionError{}},
		{"empty column", pipeline.Selection{pipeline.Categorical("", "x")}, &pipeline.SelectionError{}},
		{"unknown kind", pipeline.Selection{{Kind: "regex", Column: "Make"}}, &pipeline.SelectionError{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sel.Validate()
			switch tc.want.(type) {
			case *pipeline.RangeError:
				var re *pipeline.RangeError
				if !errors.As(err, &re) {
					t.Fatalf("err = %v, want RangeError", err)
				}
			case *pipeline.SelectionError:
				var se *pipeline.SelectionError
				if !errors.As(err, &se) {
					t.Fatalf("err = %v, want SelectionError", err)
				}
			}
		})
	}
	if err := (pipeline.Selection{pipeline.Categorical("Make", ""), pipeline.Search("Model", "a"), pipeline.Range("MSRP", nil, nil)}).Validate(); err != nil {
		t.Fatalf("valid selection rejected: %v", err)
	}
}

func TestPrepareAndApply(t *testing.T) {
	p := pipeline.New(basic(t))
	ds, err := p.Prepare(table(t, scenarioCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Apply(ds, pipeline.Selection{pipeline.Categorical("Type", "Sedan")})
	if err != nil {
		t.Fatal(err)
	}
	if got := msrps(res.Records); !reflect.DeepEqual(got, []int64{30000, 40000}) {
		t.Fatalf("got %v", got)
	}
	if ds.Len() != 3 {
		t.Fatalf("dataset mutated: %d rows", ds.Len())
	}
}

func TestCompareFirstMatch(t *testing.T) {
	csv := scenarioCSV + "Acura,TSX,Wagon,\"$31,000\"\n"
	ds, err := pipeline.New(basic(t)).Prepare(table(t, csv), nil)
	if err != nil {
		t.Fatal(err)
	}
	cmp, err := pipeline.Compare(ds.Records, "Model", "TSX", "330i")
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Left.MSRP != 30000 || cmp.Right.MSRP != 40000 {
		t.Fatalf("compare = %d vs %d", cmp.Left.MSRP, cmp.Right.MSRP)
	}
	_, err = pipeline.Compare(ds.Records, "Model", "TSX", "Civic")
	var nf *pipeline.NotFoundError
	if !errors.As(err, &nf) || nf.Value != "Civic" {
		t.Fatalf("err = %v, want NotFoundError for Civic", err)
	}
}

func TestSummarize(t *testing.T) {
	ds, err := pipeline.New(basic(t)).Prepare(table(t, scenarioCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := pipeline.Summarize(ds.Records, "MSRP")
	if !ok || s.Count != 3 || s.Min != 30000 || s.Max != 40000 || s.Mean != 35000 {
		t.Fatalf("summary = %+v", s)
	}
	if math.Abs(s.StdDev-5000) > 1e-9 {
		t.Fatalf("stddev = %v", s.StdDev)
	}
	if _, ok := pipeline.Summarize(ds.Records, "Horsepower"); ok {
		t.Fatalf("summary over absent column should report false")
	}
}
