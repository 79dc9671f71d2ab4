package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/msrp-cli/internal/report"
	"github.com/KaramelBytes/msrp-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	filterOpts      = &filterFlags{}
	filterColumns   []string
	filterShowTable bool
	filterMaxRows   int
	filterFormat    string
	filterOutput    string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file|dataset>",
	Short: "Run the cascading filter and print the narrowed vehicles",
	Example: `  msrp filter cars.csv --make Acura --type Sedan
  msrp filter cars.csv --make Acura --min 32000 --max 40000
  msrp filter cars.csv --stage Make=BMW --stage Category= --format json
  msrp filter my-import --search tt --search-column Model --output report.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(filterFormat)
		if format != "md" && format != "markdown" && format != "json" {
			return fmt.Errorf("unsupported --format: %s (use md|json)", filterFormat)
		}
		res, err := filterOpts.run(args[0])
		if err != nil {
			return err
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		cols := c.DisplayColumns
		if len(filterColumns) > 0 {
			cols = filterColumns
		}
		rep := report.New(res, report.Options{
			Columns:       cols,
			ShowTable:     filterShowTable,
			MaxRows:       filterMaxRows,
			SummaryColumn: c.RangeColumn,
		})

		var out []byte
		if format == "json" {
			if out, err = rep.JSON(); err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(rep.Markdown())
		}
		if filterOutput != "" {
			if err := utils.SafeWriteFile(filterOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Report written to %s (%d of %d rows)\n", filterOutput, rep.MatchedRows, rep.TotalRows)
		} else {
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		}
		if res.Empty != nil && filterOutput != "" {
			printEmpty(cmd, res)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterOpts.bind(filterCmd)
	filterCmd.Flags().StringSliceVar(&filterColumns, "columns", nil, "columns shown in the table (default from config)")
	filterCmd.Flags().BoolVar(&filterShowTable, "show-table", true, "include the filtered rows")
	filterCmd.Flags().IntVar(&filterMaxRows, "max-rows", 0, "limit rows shown in Markdown (0 = all)")
	filterCmd.Flags().StringVar(&filterFormat, "format", "md", "output format: md|json")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "write the report to a file")
}
