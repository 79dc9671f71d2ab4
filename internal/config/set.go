package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type setter func(c *Global, val string) error

var setters = map[string]setter{
	"profile":         func(c *Global, v string) error { c.Profile = strings.ToLower(v); return nil },
	"display_columns": func(c *Global, v string) error { c.DisplayColumns = splitList(v); return nil },
	"range_column":    func(c *Global, v string) error { c.RangeColumn = v; return nil },
	"search_column":   func(c *Global, v string) error { c.SearchColumn = v; return nil },
	"compare_key":     func(c *Global, v string) error { c.CompareKey = v; return nil },
	"delimiter":       func(c *Global, v string) error { c.Delimiter = v; return nil },
	"sheet_name":      func(c *Global, v string) error { c.SheetName = v; return nil },
	"sheet_index": func(c *Global, v string) (err error) {
		c.SheetIndex, err = cast.ToIntE(v)
		return err
	},
	"features": func(c *Global, v string) error { c.Features = splitList(v); return nil },
	"test_ratio": func(c *Global, v string) (err error) {
		c.TestRatio, err = cast.ToFloat64E(v)
		return err
	},
	"seed": func(c *Global, v string) (err error) {
		c.Seed, err = cast.ToInt64E(v)
		return err
	},
	"chart_bins": func(c *Global, v string) (err error) {
		c.ChartBins, err = cast.ToIntE(v)
		return err
	},
	"chart_width_in": func(c *Global, v string) (err error) {
		c.ChartWidthIn, err = cast.ToFloat64E(v)
		return err
	},
	"chart_height_in": func(c *Global, v string) (err error) {
		c.ChartHeightIn, err = cast.ToFloat64E(v)
		return err
	},
	"library_dir": func(c *Global, v string) error { c.LibraryDir = v; return nil },
	"log_format":  func(c *Global, v string) error { c.LogFormat = strings.ToLower(v); return nil },
}

// Set assigns a key from its string form and validates the result. On error
// the configuration is left unchanged.
func (c *Global) Set(key, val string) error {
	fn, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := fn(&next, strings.TrimSpace(val)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := Validate(&next); err != nil {
		return err
	}
	*c = next
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
