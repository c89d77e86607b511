package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by every command
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "reservoirfit",
		Short: "Fit and simulate linear reservoirs from observed storm series",
		Long: `reservoirfit fits a storage to drainage curve on the valid window of an observed
storm series, routes the rainfall through a linear reservoir driven by that curve and
scores both against the observations with the Nash-Sutcliffe Efficiency.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./reservoirfit.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (trace|debug|info|warn|error)")
	root.PersistentFlags().String("format", FormatTable, "output format (table|json)")

	root.AddCommand(
		a.analyzeCmd(),
		a.compareCmd(),
		a.resolveCmd(),
		a.snapshotCmd(),
		a.listCmd(),
	)
	return root
}

// load binds the flags of the running command to their config keys and reads the config
func (a *app) load(cmd *cobra.Command, bindings map[string]string) (*Config, error) {
	bindings["log_level"] = "log-level"
	bindings["format"] = "format"
	for key, name := range bindings {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("unable to bind flag %s, %w", name, err)
		}
	}

	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("unable to parse log level, %w", err)
	}
	zerolog.SetGlobalLevel(level)
	log.Debug().Str("config", a.v.ConfigFileUsed()).Msg("loaded configuration")
	return cfg, nil
}

func readSeries(path string) (timeseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := timeseries.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read series %s, %w", path, err)
	}
	log.Debug().Str("path", path).Int("points", len(series)).Msg("read series")
	return series, nil
}

// readTable builds a coefficient table from join rows, or loads it from a snapshot when
// the file is one
func readTable(path string, complete bool) (coeff.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if table, err := coeff.ReadSnapshot(bytes.NewReader(data)); err == nil {
		return table, nil
	}

	rows, err := coeff.ReadJoinRows(data)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Int("rows", len(rows)).Msg("read join rows")
	return coeff.NewTable(rows, complete, coeff.JSONParser, coeff.KindJSON), nil
}

func readFallbacks(path string) (coeff.Fallbacks, error) {
	if path == "" {
		return coeff.DefaultFallbacks(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return coeff.LoadFallbacks(f)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
