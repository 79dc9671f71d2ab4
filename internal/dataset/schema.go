package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Column names of the vehicle pricing dataset.
const (
	ColMake       = "Make"
	ColModel      = "Model"
	ColType       = "Type"
	ColCategory   = "Category"
	ColMSRP       = "MSRP"
	ColHorsepower = "Horsepower"
	ColEngineSize = "EngineSize"
	ColWeight     = "Weight"
)

// DefaultProfile is the schema profile used when none is configured.
const DefaultProfile = "basic"

var profiles = map[string][]string{
	"minimal":    {ColMake, ColMSRP},
	"basic":      {ColMake, ColModel, ColType, ColMSRP},
	"category":   {ColMake, ColModel, ColType, ColCategory, ColMSRP},
	"regression": {ColMake, ColModel, ColMSRP, ColHorsepower, ColEngineSize, ColWeight},
}

// Profile returns the required columns of a named schema profile.
func Profile(name string) ([]string, error) {
	if name == "" {
		name = DefaultProfile
	}
	cols, ok := profiles[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown schema profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, nil
}

// ProfileNames lists the known profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every required column is present in the header.
// Missing columns are reported in required-list order.
func Validate(t *Table, required []string) error {
	have := make(map[string]struct{}, len(t.Header))
	for _, h := range t.Header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing, Required: required}
	}
	return nil
}

// MergeColumns appends extra column names to base, skipping duplicates.
func MergeColumns(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := map[string]struct{}{}
	for _, list := range [][]string{base, extra} {
		for _, c := range list {
			if _, ok := seen[c]; ok || c == "" {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
