package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	reservoirfit "github.com/aouyang1/go-reservoir"
	"github.com/aouyang1/go-reservoir/regression"
	"github.com/aouyang1/go-reservoir/score"
	"github.com/aouyang1/go-reservoir/timeseries"
	"github.com/aouyang1/go-reservoir/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func addAnalysisFlags(cmd *cobra.Command) map[string]string {
	def := reservoirfit.NewDefaultOptions()
	cmd.Flags().String("series", "", "CSV file of the observed series")
	cmd.Flags().String("test-id", "", "id of the observed test")
	cmd.Flags().String("subset", def.Subset, "subset label of the analysis")
	cmd.Flags().Int("precision", def.Precision, "decimal places of fitted values")
	cmd.Flags().Int("start", def.StartUser, "first index considered for the fit window")
	cmd.Flags().Int("end", def.EndUser, "index after the last one considered for the fit window, 0 for the whole series")
	cmd.Flags().String("x", def.XField.String(), "storage field")
	cmd.Flags().String("y", def.YField.String(), "drainage rate field")
	_ = cmd.MarkFlagRequired("series")

	return map[string]string{
		"analysis.test_id":   "test-id",
		"analysis.subset":    "subset",
		"analysis.precision": "precision",
		"analysis.start":     "start",
		"analysis.end":       "end",
		"analysis.x_field":   "x",
		"analysis.y_field":   "y",
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fit a curve on an observed series and simulate the reservoir",
	}
	bindings := addAnalysisFlags(cmd)
	cmd.Flags().String("method", string(reservoirfit.DefaultMethod), "fit method (linear|exponential|logarithmic|power|polynomial)")
	cmd.Flags().String("plot", "", "write an html plot of the analysis to this file")
	cmd.Flags().String("simulated", "", "write the simulated series as CSV to this file")
	cmd.Flags().StringToString("test", nil, "observed test series to score the simulation against, e.g. t1=t1.csv")
	bindings["analysis.method"] = "method"

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		opt, err := cfg.Analysis.Options()
		if err != nil {
			return err
		}
		analyzer, err := reservoirfit.New(opt)
		if err != nil {
			return err
		}

		seriesPath, _ := cmd.Flags().GetString("series")
		series, err := readSeries(seriesPath)
		if err != nil {
			return err
		}
		res, err := analyzer.Analyze(series)
		if err != nil {
			return err
		}

		if plotPath, _ := cmd.Flags().GetString("plot"); plotPath != "" {
			if err := writePlot(plotPath, res); err != nil {
				return err
			}
			log.Info().Str("path", plotPath).Msg("wrote plot")
		}
		if simPath, _ := cmd.Flags().GetString("simulated"); simPath != "" {
			if err := writeSimulated(simPath, res); err != nil {
				return err
			}
			log.Info().Str("path", simPath).Msg("wrote simulated series")
		}

		testPaths, _ := cmd.Flags().GetStringToString("test")
		if len(testPaths) == 0 {
			return writeAnalysis(cmd.OutOrStdout(), cfg.Format, *opt, res)
		}
		tests, err := readTests(testPaths)
		if err != nil {
			return err
		}
		scores, err := res.ScoreTests(tests)
		if err != nil {
			return err
		}
		return writeScoredAnalysis(cmd.OutOrStdout(), cfg.Format, *opt, res, scores)
	}
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Fit and simulate an observed series with several methods",
	}
	bindings := addAnalysisFlags(cmd)
	families := make([]string, 0, len(regression.Families()))
	for _, f := range regression.Families() {
		families = append(families, string(f))
	}
	cmd.Flags().StringSlice("methods", families, "fit methods to compare")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		opt, err := cfg.Analysis.Options()
		if err != nil {
			return err
		}
		analyzer, err := reservoirfit.New(opt)
		if err != nil {
			return err
		}

		names, _ := cmd.Flags().GetStringSlice("methods")
		methods := make([]regression.Family, 0, len(names))
		for _, name := range names {
			methods = append(methods, regression.Family(strings.ToLower(strings.TrimSpace(name))))
		}

		seriesPath, _ := cmd.Flags().GetString("series")
		series, err := readSeries(seriesPath)
		if err != nil {
			return err
		}
		return writeComparisons(cmd.OutOrStdout(), cfg.Format, analyzer.Compare(series, methods...))
	}
	return cmd
}

func writePlot(path string, res *reservoirfit.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return res.PlotFit(f)
}

func writeAnalysis(w io.Writer, format string, opt reservoirfit.Options, res *reservoirfit.Analysis) error {
	if format == FormatJSON {
		return writeJSON(w, res.Summary())
	}
	if err := opt.TablePrint(w, "", "  ", 0); err != nil {
		return err
	}
	return res.TablePrint(w, "", "  ", 0)
}

func writeSimulated(path string, res *reservoirfit.Analysis) error {
	model, err := res.SimulatedSeries()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return timeseries.WriteCSV(f, model)
}

func readTests(paths map[string]string) (map[string]timeseries.Series, error) {
	tests := make(map[string]timeseries.Series, len(paths))
	for id, path := range paths {
		series, err := readSeries(path)
		if err != nil {
			return nil, fmt.Errorf("test %s, %w", id, err)
		}
		tests[id] = series
	}
	return tests, nil
}

type scoredReport struct {
	Summary reservoirfit.Summary `json:"summary"`
	Tests   []testReport         `json:"tests"`
}

type testReport struct {
	ID        string   `json:"id"`
	NSEDrain  *float64 `json:"nse_drain"`
	NSERunoff *float64 `json:"nse_runoff"`
}

func writeScoredAnalysis(w io.Writer, format string, opt reservoirfit.Options, res *reservoirfit.Analysis, scores []score.TestScore) error {
	if format == FormatJSON {
		report := scoredReport{Summary: res.Summary(), Tests: make([]testReport, 0, len(scores))}
		for _, sc := range scores {
			report.Tests = append(report.Tests, testReport{
				ID:        sc.ID,
				NSEDrain:  finite(sc.NSEDrain),
				NSERunoff: finite(sc.NSERunoff),
			})
		}
		return writeJSON(w, report)
	}

	if err := writeAnalysis(w, format, opt, res); err != nil {
		return err
	}
	fmt.Fprintln(w, "  Tests:")
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(tbl, "    ID\tNSE Drain\tNSE Runoff\t\n")
	for _, sc := range scores {
		fmt.Fprintf(tbl, "    %s\t%s\t%s\t\n", sc.ID, util.FormatFloat(sc.NSEDrain, 2), util.FormatFloat(sc.NSERunoff, 2))
	}
	return tbl.Flush()
}

func finite(v float64) *float64 {
	if !timeseries.IsNumber(v) {
		return nil
	}
	return &v
}

type comparisonReport struct {
	Method  string                `json:"method"`
	Error   string                `json:"error,omitempty"`
	Summary *reservoirfit.Summary `json:"summary,omitempty"`
}

func writeComparisons(w io.Writer, format string, comparisons []reservoirfit.Comparison) error {
	if format == FormatJSON {
		reports := make([]comparisonReport, 0, len(comparisons))
		for _, c := range comparisons {
			report := comparisonReport{Method: string(c.Method)}
			if c.Err != nil {
				report.Error = c.Err.Error()
			} else {
				s := c.Analysis.Summary()
				report.Summary = &s
			}
			reports = append(reports, report)
		}
		return writeJSON(w, reports)
	}

	for _, c := range comparisons {
		if c.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", c.Method, c.Err)
			continue
		}
		if err := c.Analysis.TablePrint(w, "", "  ", 0); err != nil {
			return err
		}
	}
	return nil
}
