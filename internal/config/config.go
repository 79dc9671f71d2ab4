package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Profile        string   `mapstructure:"profile" yaml:"profile" json:"profile"`
	DisplayColumns []string `mapstructure:"display_columns" yaml:"display_columns" json:"display_columns"`
	RangeColumn    string   `mapstructure:"range_column" yaml:"range_column" json:"range_column"`
	SearchColumn   string   `mapstructure:"search_column" yaml:"search_column" json:"search_column"`
	CompareKey     string   `mapstructure:"compare_key" yaml:"compare_key" json:"compare_key"`

	// Loading
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter" json:"delimiter"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name" json:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index" json:"sheet_index"`

	// Regression
	Features  []string `mapstructure:"features" yaml:"features" json:"features"`
	TestRatio float64  `mapstructure:"test_ratio" yaml:"test_ratio" json:"test_ratio"`
	Seed      int64    `mapstructure:"seed" yaml:"seed" json:"seed"`

	// Charts
	ChartBins     int     `mapstructure:"chart_bins" yaml:"chart_bins" json:"chart_bins"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in" json:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in" json:"chart_height_in"`

	LibraryDir string `mapstructure:"library_dir" yaml:"library_dir" json:"library_dir"`
	LogFormat  string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
}

const dirName = ".msrp"

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Path returns the file Save writes to: cfgFile, or ~/.msrp/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := defaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save validates the configuration and writes it to the cfgFile path. If
// cfgFile is empty, it writes to ~/.msrp/config.yaml, creating the directory
// if necessary.
func Save(c *Global, cfgFile string) error {
	if err := Validate(c); err != nil {
		return err
	}
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Global) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	return string(b), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", "basic")
	v.SetDefault("display_columns", []string{"Make", "Model", "Type", "MSRP"})
	v.SetDefault("range_column", "MSRP")
	v.SetDefault("search_column", "Model")
	v.SetDefault("compare_key", "Model")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("features", []string{"Horsepower", "EngineSize", "Weight"})
	v.SetDefault("test_ratio", 0.2)
	v.SetDefault("seed", 42)
	v.SetDefault("chart_bins", 20)
	v.SetDefault("chart_width_in", 8.0)
	v.SetDefault("chart_height_in", 5.0)
	v.SetDefault("library_dir", "")
	v.SetDefault("log_format", "human")
}

// Load loads configuration from file, env, and defaults, then validates it.
// Precedence: env > config file > defaults. Command flags override on top.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("MSRP")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// a missing explicit file is created by Save
		if _, err := os.Stat(cfgFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve library_dir default: ~/.msrp/library
	if c.LibraryDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.LibraryDir = filepath.Join(dir, "library")
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
