package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/msrp-cli/internal/chart"
	"github.com/spf13/cobra"
)

var (
	chartOpts    = &filterFlags{}
	chartKind    string
	chartOutput  string
	chartXColumn string
	chartLabel   string
	chartBins    int
	chartTitle   string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file|dataset>",
	Short: "Render the filtered vehicles as a bar, scatter or histogram chart",
	Example: `  msrp chart cars.csv --make Acura --kind bar -o acura.png
  msrp chart cars.csv --kind scatter --x-column Horsepower -o hp.svg
  msrp chart cars.csv --kind hist --bins 30 -o prices.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chartOutput == "" {
			return fmt.Errorf("--output is required")
		}
		kind, err := chart.ParseKind(chartKind)
		if err != nil {
			return err
		}
		res, err := chartOpts.run(args[0])
		if err != nil {
			return err
		}
		if res.Empty != nil {
			printEmpty(cmd, res)
			return nil
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		opt := chart.DefaultOptions()
		opt.Kind = kind
		opt.Bins = c.ChartBins
		opt.WidthIn, opt.HeightIn = c.ChartWidthIn, c.ChartHeightIn
		if chartBins > 0 {
			opt.Bins = chartBins
		}
		if chartXColumn != "" {
			opt.XColumn = chartXColumn
		}
		if chartLabel != "" {
			opt.LabelColumn = chartLabel
		}
		opt.Title = chartTitle
		if err := chart.Render(res.Records, opt, chartOutput); err != nil {
			if errors.Is(err, chart.ErrNoData) {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Nothing to chart: %v\n", err)
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Chart written to %s (%d vehicles)\n", chartOutput, res.Rows())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartOpts.bind(chartCmd)
	chartCmd.Flags().StringVar(&chartKind, "kind", "bar", "chart kind: bar|scatter|hist")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "image path; format from extension (.png, .svg, .pdf, .jpg)")
	chartCmd.Flags().StringVar(&chartXColumn, "x-column", "", "scatter x axis column (default Horsepower)")
	chartCmd.Flags().StringVar(&chartLabel, "label-column", "", "bar label column (default Model)")
	chartCmd.Flags().IntVar(&chartBins, "bins", 0, "histogram bins (default from config)")
	chartCmd.Flags().StringVar(&chartTitle, "title", "", "chart title")
}
