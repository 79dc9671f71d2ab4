package cmd

import (
	"fmt"

	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/KaramelBytes/msrp-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	compareOpts    = &filterFlags{}
	compareKey     string
	compareColumns []string
	compareJSON    bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file|dataset> <keyA> <keyB>",
	Short: "Show two vehicles side by side",
	Long: `Compare looks up the first vehicle (in file order) whose key column equals
each key and prints them side by side. The default key column is Model.`,
	Example: `  msrp compare cars.csv "MDX" "X5"
  msrp compare cars.csv Acura BMW --key Make`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		key := c.CompareKey
		if compareKey != "" {
			key = compareKey
		}
		res, err := compareOpts.run(args[0], key)
		if err != nil {
			return err
		}
		if res.Empty != nil {
			printEmpty(cmd, res)
			return nil
		}
		cmp, err := pipeline.Compare(res.Records, key, args[1], args[2])
		if err != nil {
			return err
		}
		cols := compareColumns
		if len(cols) == 0 {
			cols = res.Dataset.Columns
		}
		rep := report.NewComparison(cmp, cols)
		if compareJSON {
			b, err := rep.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), rep.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareOpts.bind(compareCmd)
	compareCmd.Flags().StringVar(&compareKey, "key", "", "key column (default from config)")
	compareCmd.Flags().StringSliceVar(&compareColumns, "columns", nil, "fields to show (default: all)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print JSON")
}
