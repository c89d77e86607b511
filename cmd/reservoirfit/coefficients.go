package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	reservoirfit "github.com/aouyang1/go-reservoir"
	"github.com/aouyang1/go-reservoir/coeff"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var ErrNoMatch = errors.New("no coefficients found for profile")

func addTableFlags(cmd *cobra.Command) map[string]string {
	cmd.Flags().String("rows", "", "JSON join rows or a coefficient table snapshot")
	cmd.Flags().Bool("complete", true, "attach provenance to the coefficient records")
	_ = cmd.MarkFlagRequired("rows")
	return map[string]string{
		"coefficients.complete": "complete",
	}
}

func (a *app) resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve stored coefficients for a profile, optionally simulating a series with them",
	}
	bindings := addTableFlags(cmd)
	cmd.Flags().String("join-type", coeff.JoinIFromS, "join type to resolve")
	cmd.Flags().StringSlice("versions", nil, "versions to try from most to least preferred")
	cmd.Flags().String("fallbacks", "", "YAML file overriding the profile field fallback order")
	cmd.Flags().StringToString("profile", nil, "profile codes by field, e.g. profileCodeExact=20+20x10")
	cmd.Flags().String("series", "", "CSV file of an observed series to simulate with the coefficients")
	bindings["coefficients.join_type"] = "join-type"
	bindings["coefficients.versions"] = "versions"
	bindings["coefficients.fallbacks"] = "fallbacks"

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		rowsPath, _ := cmd.Flags().GetString("rows")
		table, err := readTable(rowsPath, cfg.Coefficients.Complete)
		if err != nil {
			return err
		}
		fallbacks, err := readFallbacks(cfg.Coefficients.Fallbacks)
		if err != nil {
			return err
		}
		profile, _ := cmd.Flags().GetStringToString("profile")

		seriesPath, _ := cmd.Flags().GetString("series")
		if seriesPath == "" {
			match, found := coeff.Resolve(cfg.Coefficients.JoinType, profile, table, cfg.Coefficients.Versions, fallbacks)
			if !found {
				return fmt.Errorf("join type %s, %w", cfg.Coefficients.JoinType, ErrNoMatch)
			}
			return writeMatch(cmd.OutOrStdout(), cfg.Format, match)
		}

		opt, err := cfg.Analysis.Options()
		if err != nil {
			return err
		}
		analyzer, err := reservoirfit.New(opt)
		if err != nil {
			return err
		}
		series, err := readSeries(seriesPath)
		if err != nil {
			return err
		}
		res, err := analyzer.AnalyzeResolved(series, reservoirfit.CoefficientQuery{
			JoinType:  cfg.Coefficients.JoinType,
			Profile:   profile,
			Table:     table,
			Versions:  cfg.Coefficients.Versions,
			Fallbacks: fallbacks,
		})
		if err != nil {
			return err
		}
		return writeAnalysis(cmd.OutOrStdout(), cfg.Format, *opt, res)
	}
	return cmd
}

func (a *app) snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build a coefficient table from join rows and write it as a snapshot",
	}
	bindings := addTableFlags(cmd)
	cmd.Flags().String("out", "", "snapshot file to write")
	_ = cmd.MarkFlagRequired("out")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		rowsPath, _ := cmd.Flags().GetString("rows")
		table, err := readTable(rowsPath, cfg.Coefficients.Complete)
		if err != nil {
			return err
		}

		outPath, _ := cmd.Flags().GetString("out")
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := coeff.WriteSnapshot(f, table); err != nil {
			return err
		}
		log.Info().Str("path", outPath).Int("join_types", len(table)).Msg("wrote coefficient snapshot")
		return nil
	}
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every coefficient record of a table",
	}
	bindings := addTableFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		rowsPath, _ := cmd.Flags().GetString("rows")
		table, err := readTable(rowsPath, cfg.Coefficients.Complete)
		if err != nil {
			return err
		}

		records := coeff.Format(table)
		if cfg.Format == FormatJSON {
			return writeJSON(cmd.OutOrStdout(), records)
		}
		return writeRecords(cmd.OutOrStdout(), records)
	}
	return cmd
}

func writeMatch(w io.Writer, format string, match coeff.Match) error {
	if format == FormatJSON {
		return writeJSON(w, match)
	}
	fmt.Fprintf(w, "Match: %s\n", match.Found)
	fmt.Fprintf(w, "  Version: %s\n", match.Version)
	fmt.Fprintf(w, "  Function: %s\n", match.Record.String)
	if match.Record.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", match.Record.Message)
	}
	return nil
}

func writeRecords(w io.Writer, records []coeff.Record) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "ID\tJoin Type\tProfile\tFunction\t\n")
	for _, rec := range records {
		id, profile := "-", "-"
		if rec.Provenance != nil {
			id = fmt.Sprintf("%d", rec.Provenance.ID)
			profile = rec.Provenance.ProfileCode
		}
		fmt.Fprintf(tbl, "%s\t%s\t%s\t%s\t\n", id, rec.JoinType, profile, rec.String)
	}
	return tbl.Flush()
}
