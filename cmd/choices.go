package cmd

import (
	"fmt"

	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var choicesOpts = &filterFlags{}

var choicesCmd = &cobra.Command{
	Use:   "choices <file|dataset> <column>",
	Short: "List the values selectable for a column after the given filters",
	Example: `  msrp choices cars.csv Make
  msrp choices cars.csv Type --make Acura`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		column := args[1]
		res, err := choicesOpts.run(args[0], column)
		if err != nil {
			return err
		}
		if res.Empty != nil {
			printEmpty(cmd, res)
			return nil
		}
		values := pipeline.Choices(res.Records, column)
		if len(values) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ No %s values available for this choice\n", column)
			return nil
		}
		for _, v := range values {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(choicesCmd)
	choicesOpts.bind(choicesCmd)
}
