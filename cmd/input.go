package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/library"
	"github.com/KaramelBytes/msrp-cli/internal/logger"
	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/KaramelBytes/msrp-cli/internal/utils"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadFlags selects how an input file is read.
type loadFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
}

func (l *loadFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',', ';', 'tab' (default: by extension)")
	fs.StringVar(&l.sheetName, "sheet-name", "", "XLSX sheet name")
	fs.IntVar(&l.sheetIndex, "sheet-index", 0, "XLSX sheet index, 1-based (default from config)")
}

func (l *loadFlags) options() (dataset.LoadOptions, error) {
	c, err := currentConfig()
	if err != nil {
		return dataset.LoadOptions{}, err
	}
	delim := c.Delimiter
	if l.delimiter != "" {
		delim = l.delimiter
	}
	r, err := dataset.ParseDelimiter(delim)
	if err != nil {
		return dataset.LoadOptions{}, err
	}
	opt := dataset.LoadOptions{Delimiter: r, SheetName: c.SheetName, SheetIndex: c.SheetIndex}
	if l.sheetName != "" {
		opt.SheetName = l.sheetName
	}
	if l.sheetIndex > 0 {
		opt.SheetIndex = l.sheetIndex
	}
	return opt, nil
}

// filterFlags are the selection and schema flags shared by the commands that
// run the pipeline.
type filterFlags struct {
	loadFlags
	cmd *cobra.Command

	makeVal     string
	typeVal     string
	categoryVal string
	stages      []string
	search      string
	searchCol   string
	min, max    float64
	rangeCol    string
	profile     string
	require     []string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	f.cmd = cmd
	fs := cmd.Flags()
	f.loadFlags.bind(fs)
	fs.StringVar(&f.makeVal, "make", "", "filter by Make (empty picks the first available)")
	fs.StringVar(&f.typeVal, "type", "", "filter by Type (empty picks the first available)")
	fs.StringVar(&f.categoryVal, "category", "", "filter by Category (empty picks the first available)")
	fs.StringArrayVar(&f.stages, "stage", nil, "additional cascading filter column=value (repeatable, applied in order)")
	fs.StringVar(&f.search, "search", "", "case-insensitive substring search")
	fs.StringVar(&f.searchCol, "search-column", "", "column searched by --search (default from config)")
	fs.Float64Var(&f.min, "min", 0, "inclusive lower bound of the range filter")
	fs.Float64Var(&f.max, "max", 0, "inclusive upper bound of the range filter")
	fs.StringVar(&f.rangeCol, "range-column", "", "numeric column of the range filter (default from config)")
	fs.StringVar(&f.profile, "profile", "", "schema profile: minimal|basic|category|regression")
	fs.StringSliceVar(&f.require, "require", nil, "additional required columns")
}

// selection builds the FilterSelection from the flags given in this run.
// Categorical stages come first, then search, then range.
func (f *filterFlags) selection() (pipeline.Selection, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	var sel pipeline.Selection
	provided := f.cmd.Flags().Changed
	if provided("make") {
		sel = append(sel, pipeline.Categorical(dataset.ColMake, f.makeVal))
	}
	if provided("type") {
		sel = append(sel, pipeline.Categorical(dataset.ColType, f.typeVal))
	}
	if provided("category") {
		sel = append(sel, pipeline.Categorical(dataset.ColCategory, f.categoryVal))
	}
	for _, s := range f.stages {
		col, val, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("invalid --stage %q (use column=value)", s)
		}
		sel = append(sel, pipeline.Categorical(strings.TrimSpace(col), strings.TrimSpace(val)))
	}
	if f.search != "" {
		col := c.SearchColumn
		if f.searchCol != "" {
			col = f.searchCol
		}
		sel = append(sel, pipeline.Search(col, f.search))
	}
	if provided("min") || provided("max") || provided("range-column") {
		col := c.RangeColumn
		if f.rangeCol != "" {
			col = f.rangeCol
		}
		var lo, hi *float64
		if provided("min") {
			lo = pipeline.Bound(f.min)
		}
		if provided("max") {
			hi = pipeline.Bound(f.max)
		}
		sel = append(sel, pipeline.Range(col, lo, hi))
	}
	return sel, nil
}

// required returns the profile columns plus --require and extra.
func (f *filterFlags) required(extra ...string) ([]string, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	name := c.Profile
	if f.profile != "" {
		name = f.profile
	}
	cols, err := dataset.Profile(name)
	if err != nil {
		return nil, err
	}
	return dataset.MergeColumns(dataset.MergeColumns(cols, f.require...), extra...), nil
}

// run loads ref and executes the pipeline.
func (f *filterFlags) run(ref string, extra ...string) (*pipeline.Result, error) {
	sel, err := f.selection()
	if err != nil {
		return nil, err
	}
	required, err := f.required(extra...)
	if err != nil {
		return nil, err
	}
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	t, err := openInput(ref, opt)
	if err != nil {
		return nil, err
	}
	log := logger.WithDataset(t.Name)
	log.Debug("running pipeline", "rows", len(t.Rows), "stages", len(sel), "required", strings.Join(required, ","))
	return pipeline.New(required).WithLogger(log).Execute(t, sel)
}

// openInput reads a file path, or an imported dataset by ID or name.
func openInput(ref string, opt dataset.LoadOptions) (*dataset.Table, error) {
	if utils.IsFile(ref) {
		return dataset.Load(ref, opt)
	}
	lib, err := openLibrary()
	if err != nil {
		return nil, err
	}
	e, err := lib.Resolve(ref)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			if _, statErr := os.Stat(ref); statErr != nil {
				return nil, fmt.Errorf("%s is neither a readable file nor an imported dataset", ref)
			}
		}
		return nil, err
	}
	logger.Debug("resolved dataset", slog.String("id", e.ID), slog.String("name", e.Name))
	return e.Table()
}

func openLibrary() (*library.Library, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	dir, err := utils.ExpandHome(c.LibraryDir)
	if err != nil {
		return nil, err
	}
	return library.Open(dir)
}

// printEmpty reports a soft empty selection; it is not an error exit.
func printEmpty(cmd *cobra.Command, res *pipeline.Result) {
	fmt.Fprintf(cmd.ErrOrStderr(), "⚠ No data available for this choice: %v\n", res.Empty)
}

// parseAssignments parses repeated name=value numeric flags.
func parseAssignments(items []string) (map[string]float64, error) {
	out := make(map[string]float64, len(items))
	for _, it := range items {
		k, v, ok := strings.Cut(it, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --feature %q (use name=value)", it)
		}
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid --feature %q: %w", it, err)
		}
		out[strings.TrimSpace(k)] = f
	}
	return out, nil
}
