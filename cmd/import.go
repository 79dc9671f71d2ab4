package cmd

import (
	"fmt"

	"github.com/KaramelBytes/msrp-cli/internal/library"
	"github.com/spf13/cobra"
)

var (
	importFlags   loadFlags
	importName    string
	importProfile string
	importRequire []string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a dataset and store a normalized copy in the library",
	Example: `  msrp import cars.csv --name cars2004
  msrp import pricing.xlsx --sheet-name Cars --profile category`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		profile := c.Profile
		if importProfile != "" {
			profile = importProfile
		}
		fo := &filterFlags{profile: profile, require: importRequire}
		required, err := fo.required()
		if err != nil {
			return err
		}
		opt, err := importFlags.options()
		if err != nil {
			return err
		}
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		e, err := lib.Import(args[0], library.ImportOptions{
			Name:     importName,
			Profile:  profile,
			Required: required,
			Load:     opt,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %s as %s (%d rows, %d columns)\n", e.Name, e.ID, e.Rows, len(e.Columns))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importFlags.bind(importCmd.Flags())
	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (default: file name)")
	importCmd.Flags().StringVar(&importProfile, "profile", "", "schema profile checked on import (default from config)")
	importCmd.Flags().StringSliceVar(&importRequire, "require", nil, "additional required columns")
}
