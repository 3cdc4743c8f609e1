package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/belivan/MaxantAgency-sub013/internal/qa"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

type qaFlags struct {
	inputFile string
	format    string
	failOn    string
}

func newQACmd(g *globalFlags) *cobra.Command {
	var f qaFlags
	cmd := &cobra.Command{
		Use:   "qa",
		Short: "Validate the quality of a synthesis result",
		Long: "Validate the quality of a synthesis result.\n\n" +
			"With --fail-on, exits 2 when the quality tier is at or worse than the threshold " +
			"(EXCELLENT < PASS < WARN < FAIL).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQA(g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.inputFile, "input", "", "JSON synthesis result")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text or json")
	cmd.Flags().StringVar(&f.failOn, "fail-on", "", "exit 2 at or worse than this tier: WARN or FAIL")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runQA(g *globalFlags, f qaFlags, stdout, stderr io.Writer) error {
	var threshold schema.QualityTier
	if f.failOn != "" {
		threshold = schema.QualityTier(strings.ToUpper(f.failOn))
		if threshold != schema.TierWarn && threshold != schema.TierFail {
			return fmt.Errorf("unknown --fail-on %q (want WARN or FAIL)", f.failOn)
		}
	}
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("unknown --format %q (want text or json)", f.format)
	}
	_, logger, err := g.load(stderr)
	if err != nil {
		return err
	}

	var res schema.SynthesisResult
	if err := readJSON(f.inputFile, &res); err != nil {
		return err
	}
	rep, err := qa.ValidateReportQuality(&res)
	if err != nil {
		return err
	}
	logger.Info("quality validated", "status", rep.Status, "score", rep.QualityScore)

	if f.format == "json" {
		err = writeJSON(stdout, rep)
	} else {
		_, err = io.WriteString(stdout, qa.GenerateQAReport(rep))
	}
	if err != nil {
		return err
	}

	if threshold != "" && qa.TierOrdinal(rep.Status) >= qa.TierOrdinal(threshold) {
		return &exitError{code: 2, err: fmt.Errorf("quality %s (score %d) is at or worse than --fail-on %s", rep.Status, rep.QualityScore, threshold)}
	}
	return nil
}
