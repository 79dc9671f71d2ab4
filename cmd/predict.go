package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/regress"
	"github.com/KaramelBytes/msrp-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	predictOpts       = &filterFlags{}
	predictHorsepower float64
	predictEngineSize float64
	predictWeight     float64
	predictFeatures   []string
	predictUse        []string
	predictTestRatio  float64
	predictSeed       int64
	predictJSON       bool
)

var predictCmd = &cobra.Command{
	Use:   "predict <file|dataset>",
	Short: "Fit a linear MSRP model and optionally predict a price",
	Long: `Predict fits ordinary least squares MSRP ~ Horsepower + EngineSize + Weight
(feature list configurable) over the filtered vehicles and reports R² on a
held-out split. Give feature values to get a predicted price.`,
	Example: `  msrp predict cars.csv --horsepower 250 --engine-size 3.0 --weight 3500
  msrp predict cars.csv --make BMW --feature Horsepower=300 --feature EngineSize=3 --feature Weight=3600`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		opt := regress.DefaultOptions()
		opt.Features = c.Features
		opt.TestRatio = c.TestRatio
		opt.Seed = c.Seed
		if len(predictUse) > 0 {
			opt.Features = predictUse
		}
		fs := cmd.Flags()
		if fs.Changed("test-ratio") {
			opt.TestRatio = predictTestRatio
		}
		if fs.Changed("seed") {
			opt.Seed = predictSeed
		}

		inputs, err := parseAssignments(predictFeatures)
		if err != nil {
			return err
		}
		if fs.Changed("horsepower") {
			inputs[dataset.ColHorsepower] = predictHorsepower
		}
		if fs.Changed("engine-size") {
			inputs[dataset.ColEngineSize] = predictEngineSize
		}
		if fs.Changed("weight") {
			inputs[dataset.ColWeight] = predictWeight
		}

		res, err := predictOpts.run(args[0])
		if err != nil {
			return err
		}
		if res.Empty != nil {
			printEmpty(cmd, res)
			return nil
		}
		ds := res.Dataset.WithRecords(res.Records)

		var rep *report.PredictionReport
		m, err := regress.Fit(ds, opt)
		var unavailable *regress.UnavailableError
		switch {
		case errors.As(err, &unavailable):
			rep = report.Unavailable(unavailable)
		case err != nil:
			return err
		default:
			if rep, err = report.NewPrediction(m, inputs); err != nil {
				return err
			}
		}

		if predictJSON {
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
	rootCmd.AddCommand(predictCmd)
	predictOpts.bind(predictCmd)
	predictCmd.Flags().Float64Var(&predictHorsepower, "horsepower", 0, "Horsepower of the vehicle to price")
	predictCmd.Flags().Float64Var(&predictEngineSize, "engine-size", 0, "EngineSize of the vehicle to price")
	predictCmd.Flags().Float64Var(&predictWeight, "weight", 0, "Weight of the vehicle to price")
	predictCmd.Flags().StringArrayVar(&predictFeatures, "feature", nil, "feature value name=value (repeatable)")
	predictCmd.Flags().StringSliceVar(&predictUse, "features", nil, "feature columns of the model (default from config)")
	predictCmd.Flags().Float64Var(&predictTestRatio, "test-ratio", 0.2, "held-out share of rows")
	predictCmd.Flags().Int64Var(&predictSeed, "seed", 42, "split seed")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print JSON")
}
