package dataset_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
)

const carsCSV = `Make,Model,Type,MSRP,Horsepower
Acura,MDX,SUV,"$36,945",265
Acura,RSX Type S 2dr,Sedan,"$23,820",200
BMW,325i 4dr,Sedan,"$28,495",NA
`

func mustRead(t *testing.T, content string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(content), "cars.csv", ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func TestParseMSRP(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"$12,999", 12999, false},
		{"12999", 12999, false},
		{" $1,234,567 ", 1234567, false},
		{"$0", 0, false},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"-$500", 0, true},
		{"12.5", 0, true},
		{"$", 0, true},
	}
	for _, tc := range cases {
		got, err := dataset.ParseMSRP(tc.in)
		if tc.wantErr {
			if !errors.Is(err, dataset.ErrInvalidPrice) {
				t.Errorf("ParseMSRP(%q) err = %v, want ErrInvalidPrice", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMSRP(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMSRP(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCleansMSRP(t *testing.T) {
	ds, err := dataset.Normalize(mustRead(t, carsCSV))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("records = %d, want 3", ds.Len())
	}
	want := []int64{36945, 23820, 28495}
	for i, r := range ds.Records {
		if r.MSRP != want[i] {
			t.Errorf("record %d MSRP = %d, want %d", i, r.MSRP, want[i])
		}
		if r.MSRP < 0 {
			t.Errorf("record %d has negative MSRP", i)
		}
		if r.Index != i {
			t.Errorf("record %d index = %d", i, r.Index)
		}
	}
	if v, _ := ds.Records[0].Value(dataset.ColMSRP); v != "36945" {
		t.Fatalf("MSRP value = %q", v)
	}
}

func TestNormalizeRejectsWholeDatasetOnBadValue(t *testing.T) {
	content := "Make,Model,Type,MSRP\nAcura,MDX,SUV,\"$36,945\"\nBMW,X5,SUV,abc\nAudi,A4,Sedan,$30000\n"
	ds, err := dataset.Normalize(mustRead(t, content))
	if ds != nil {
		t.Fatalf("expected no dataset on format error")
	}
	var fe *dataset.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	if fe.Row != 2 || fe.Value != "abc" {
		t.Fatalf("FormatError = %+v", fe)
	}
	if !errors.Is(err, dataset.ErrInvalidPrice) {
		t.Fatalf("FormatError should unwrap to ErrInvalidPrice")
	}
}

func TestNormalizeMissingPriceIsFormatError(t *testing.T) {
	content := "Make,MSRP\nAcura,\nBMW,$1\n"
	_, err := dataset.Normalize(mustRead(t, content))
	var fe *dataset.FormatError
	if !errors.As(err, &fe) || fe.Row != 1 {
		t.Fatalf("err = %v, want FormatError on row 1", err)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first, err := dataset.Normalize(mustRead(t, carsCSV))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	clean := first.Table()
	second, err := dataset.Normalize(clean)
	if err != nil {
		t.Fatalf("Normalize clean: %v", err)
	}
	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Fatalf("second normalization changed records")
	}
	if !reflect.DeepEqual(clean.Rows, second.Table().Rows) {
		t.Fatalf("clean table changed: %v vs %v", clean.Rows, second.Table().Rows)
	}
}

func TestNormalizeWithoutMSRPColumn(t *testing.T) {
	_, err := dataset.Normalize(mustRead(t, "Make,Model\nAcura,MDX\n"))
	var se *dataset.SchemaError
	if !errors.As(err, &se) || len(se.Missing) != 1 || se.Missing[0] != dataset.ColMSRP {
		t.Fatalf("err = %v, want SchemaError naming MSRP", err)
	}
}

func TestValidateNamesMissingColumns(t *testing.T) {
	tbl := mustRead(t, carsCSV)
	required, err := dataset.Profile("category")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	err = dataset.Validate(tbl, required)
	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if !reflect.DeepEqual(se.Missing, []string{"Category"}) {
		t.Fatalf("missing = %v", se.Missing)
	}
	if !strings.Contains(err.Error(), "Category") {
		t.Fatalf("message should name Category: %s", err)
	}

	basic, _ := dataset.Profile("")
	if err := dataset.Validate(tbl, basic); err != nil {
		t.Fatalf("basic profile: %v", err)
	}
}

func TestProfileUnknown(t *testing.T) {
	if _, err := dataset.Profile("dashboard"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}

func TestRecordValueAndNumber(t *testing.T) {
	ds, err := dataset.Normalize(mustRead(t, carsCSV))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	hp, ok := ds.Records[0].Number(dataset.ColHorsepower)
	if !ok || hp != 265 {
		t.Fatalf("horsepower = %v, %v", hp, ok)
	}
	if _, ok := ds.Records[2].Number(dataset.ColHorsepower); ok {
		t.Fatalf("NA horsepower should be missing")
	}
	if _, ok := ds.Records[2].Value(dataset.ColHorsepower); ok {
		t.Fatalf("NA should not be a value")
	}
	if _, ok := ds.Records[0].Value("Category"); ok {
		t.Fatalf("absent column should not be a value")
	}
	if v, ok := ds.Records[1].Value(dataset.ColModel); !ok || v != "RSX Type S 2dr" {
		t.Fatalf("model = %q, %v", v, ok)
	}
}

func TestMergeColumns(t *testing.T) {
	got := dataset.MergeColumns([]string{"Make", "MSRP"}, "Type", "Make", "", "Category")
	want := []string{"Make", "MSRP", "Type", "Category"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MergeColumns = %v, want %v", got, want)
	}
}
