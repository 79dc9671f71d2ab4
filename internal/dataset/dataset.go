package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Record is one normalized row. Index is the row's 0-based position in the
// source file and is preserved through filtering.
type Record struct {
	Index  int
	MSRP   int64
	fields map[string]string
}

// NewRecord builds a record from column values. MSRP is taken as given.
func NewRecord(index int, msrp int64, fields map[string]string) Record {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{Index: index, MSRP: msrp, fields: cp}
}

// Value returns the cell of a column and whether it holds a value.
// MSRP is rendered from the normalized integer.
func (r Record) Value(col string) (string, bool) {
	if col == ColMSRP {
		return strconv.FormatInt(r.MSRP, 10), true
	}
	v, ok := r.fields[col]
	if !ok || IsMissing(v) {
		return "", false
	}
	return v, true
}

// Number returns a column as float64. Currency symbols and thousands
// separators are ignored; missing or non-numeric cells report false.
func (r Record) Number(col string) (float64, bool) {
	if col == ColMSRP {
		return float64(r.MSRP), true
	}
	v, ok := r.Value(col)
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(stripCurrency(v)))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Dataset is a validated, normalized table. It is not modified after Normalize.
type Dataset struct {
	Name    string
	Columns []string
	Records []Record
}

// HasColumn reports whether the dataset schema contains col.
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// WithRecords returns a dataset sharing this schema but holding only records.
func (d *Dataset) WithRecords(records []Record) *Dataset {
	return &Dataset{Name: d.Name, Columns: d.Columns, Records: records}
}

// Table renders the dataset back to raw form with MSRP as plain integers.
func (d *Dataset) Table() *Table {
	t := &Table{Name: d.Name, Header: append([]string(nil), d.Columns...)}
	for _, r := range d.Records {
		row := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			if c == ColMSRP {
				row[i] = strconv.FormatInt(r.MSRP, 10)
				continue
			}
			row[i] = r.fields[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ParseMSRP strips '$', ',' and surrounding whitespace from a price and
// parses the remainder as a base-10 integer.
func ParseMSRP(raw string) (int64, error) {
	s := strings.TrimSpace(stripCurrency(raw))
	if s == "" {
		return 0, ErrInvalidPrice
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidPrice
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	return n, nil
}

// Normalize converts a table into a Dataset, cleaning the MSRP column.
// The first bad MSRP value aborts with a FormatError. Running it over a table
// whose MSRP values are already plain integers leaves them unchanged.
func Normalize(t *Table) (*Dataset, error) {
	msrpIdx := t.ColumnIndex(ColMSRP)
	if msrpIdx < 0 {
		return nil, &SchemaError{Missing: []string{ColMSRP}, Required: []string{ColMSRP}}
	}
	ds := &Dataset{
		Name:    t.Name,
		Columns: append([]string(nil), t.Header...),
		Records: make([]Record, 0, len(t.Rows)),
	}
	for i, row := range t.Rows {
		price, err := ParseMSRP(row[msrpIdx])
		if err != nil {
			return nil, &FormatError{Row: i + 1, Column: ColMSRP, Value: row[msrpIdx], Err: err}
		}
		fields := make(map[string]string, len(t.Header))
		for j, h := range t.Header {
			if j == msrpIdx {
				continue
			}
			if _, dup := fields[h]; dup {
				continue
			}
			fields[h] = row[j]
		}
		ds.Records = append(ds.Records, Record{Index: i, MSRP: price, fields: fields})
	}
	return ds, nil
}

var currencyReplacer = strings.NewReplacer("$", "", ",", "")

func stripCurrency(s string) string { return currencyReplacer.Replace(s) }
