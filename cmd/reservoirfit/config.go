package main

import (
	"errors"
	"fmt"
	"strings"

	reservoirfit "github.com/aouyang1/go-reservoir"
	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/spf13/viper"
)

const envPrefix = "RESERVOIRFIT"

var ErrUnknownFormat = errors.New("unknown output format")

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config is the command line configuration read from the config file, RESERVOIRFIT_*
// environment variables and flags, in increasing order of precedence
type Config struct {
	LogLevel     string             `mapstructure:"log_level"`
	Format       string             `mapstructure:"format"`
	Analysis     AnalysisConfig     `mapstructure:"analysis"`
	Coefficients CoefficientsConfig `mapstructure:"coefficients"`
}

type AnalysisConfig struct {
	TestID    string `mapstructure:"test_id"`
	Method    string `mapstructure:"method"`
	Subset    string `mapstructure:"subset"`
	Precision int    `mapstructure:"precision"`
	Start     int    `mapstructure:"start"`
	End       int    `mapstructure:"end"`
	XField    string `mapstructure:"x_field"`
	YField    string `mapstructure:"y_field"`
}

type CoefficientsConfig struct {
	JoinType  string   `mapstructure:"join_type"`
	Versions  []string `mapstructure:"versions"`
	Fallbacks string   `mapstructure:"fallbacks"`
	Complete  bool     `mapstructure:"complete"`
}

func setDefaults(v *viper.Viper) {
	def := reservoirfit.NewDefaultOptions()
	v.SetDefault("log_level", "info")
	v.SetDefault("format", FormatTable)

	v.SetDefault("analysis.test_id", "")
	v.SetDefault("analysis.method", string(def.Method))
	v.SetDefault("analysis.subset", def.Subset)
	v.SetDefault("analysis.precision", def.Precision)
	v.SetDefault("analysis.start", def.StartUser)
	v.SetDefault("analysis.end", def.EndUser)
	v.SetDefault("analysis.x_field", def.XField.String())
	v.SetDefault("analysis.y_field", def.YField.String())

	v.SetDefault("coefficients.join_type", coeff.JoinIFromS)
	v.SetDefault("coefficients.versions", []string{})
	v.SetDefault("coefficients.fallbacks", "")
	v.SetDefault("coefficients.complete", true)
}

// loadConfig reads the configuration. An explicit config file must exist, otherwise a
// reservoirfit.yaml in the working directory is used when present.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("reservoirfit")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if cfg.Format != FormatTable && cfg.Format != FormatJSON {
		return nil, fmt.Errorf("%q, %w", cfg.Format, ErrUnknownFormat)
	}
	return &cfg, nil
}

// Options converts the analysis configuration into analyzer options
func (c AnalysisConfig) Options() (*reservoirfit.Options, error) {
	method, err := regression.ParseFamily(c.Method)
	if err != nil {
		return nil, err
	}
	x, err := timeseries.ParseField(c.XField)
	if err != nil {
		return nil, fmt.Errorf("x field, %w", err)
	}
	y, err := timeseries.ParseField(c.YField)
	if err != nil {
		return nil, fmt.Errorf("y field, %w", err)
	}
	return &reservoirfit.Options{
		TestID:    c.TestID,
		Method:    method,
		Subset:    c.Subset,
		Precision: c.Precision,
		StartUser: c.Start,
		EndUser:   c.End,
		XField:    x,
		YField:    y,
	}, nil
}
