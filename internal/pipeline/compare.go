package pipeline

import "github.com/KaramelBytes/msrp-cli/internal/dataset"

// Comparison pairs the first records matching two keys.
type Comparison struct {
	Column string
	Left   dataset.Record
	Right  dataset.Record
}

// FirstMatch returns the first record, in original order, whose column
// equals key.
func FirstMatch(records []dataset.Record, column, key string) (dataset.Record, bool) {
	for _, r := range records {
		if v, ok := r.Value(column); ok && v == key {
			return r, true
		}
	}
	return dataset.Record{}, false
}

// Compare looks up both keys. When a key matches several records the first
// one wins.
func Compare(records []dataset.Record, column, a, b string) (*Comparison, error) {
	left, ok := FirstMatch(records, column, a)
	if !ok {
		return nil, &NotFoundError{Column: column, Value: a}
	}
	right, ok := FirstMatch(records, column, b)
	if !ok {
		return nil, &NotFoundError{Column: column, Value: b}
	}
	return &Comparison{Column: column, Left: left, Right: right}, nil
}
