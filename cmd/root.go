package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/msrp-cli/internal/config"
	"github.com/KaramelBytes/msrp-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "msrp",
	Short: "msrp: filter, chart and model vehicle pricing datasets",
	Long: `msrp loads a vehicle pricing CSV/TSV/XLSX, validates and normalizes its MSRP
column, and narrows it through cascading brand/type/category filters, a text
search and an inclusive price range. Results render as Markdown or JSON, as
charts, or feed a linear price model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.msrp/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: human|json (overrides config)")
}

func loadConfig() {
	cfg, cfgErr = nil, nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report cfgErr
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfgErr = err
	} else {
		cfg = c
	}

	lvl := slog.LevelWarn
	if debug {
		lvl = slog.LevelDebug
	}
	name := logFormat
	if name == "" && cfg != nil {
		name = cfg.LogFormat
	}
	f, err := logger.ParseFormat(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	logger.Setup(os.Stderr, lvl, f)
	if cfg != nil {
		logger.Debug("config loaded", "profile", cfg.Profile, "library_dir", cfg.LibraryDir)
	}
}

// currentConfig returns the loaded configuration or the reason it is missing.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil {
		return nil, cfgErr
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
