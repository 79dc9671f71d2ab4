package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listVerbose bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		entries, err := lib.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "(no datasets)")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "- %s: %s (%d rows, imported %s)\n", e.ID, e.Name, e.Rows, e.ImportedAt.Format("2006-01-02 15:04"))
			if listVerbose {
				fmt.Fprintf(out, "    source: %s\n    columns: %s\n", e.Source, strings.Join(e.Columns, ", "))
			}
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <dataset>",
	Short: "Remove an imported dataset from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		e, err := lib.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := lib.Remove(e); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s (%s)\n", e.Name, e.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "show source path and columns")
}
