package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/belivan/MaxantAgency-sub013/internal/llm"
	"github.com/belivan/MaxantAgency-sub013/internal/prompt"
	"github.com/belivan/MaxantAgency-sub013/internal/qa"
	"github.com/belivan/MaxantAgency-sub013/internal/render"
	"github.com/belivan/MaxantAgency-sub013/internal/synthesis"
)

type synthesizeFlags struct {
	inputFile string
	format    string
	out       string
	withQA    bool
}

func newSynthesizeCmd(g *globalFlags) *cobra.Command {
	var f synthesizeFlags
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Consolidate issues and write the executive summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSynthesize(cmd.Context(), g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.inputFile, "input", "", "JSON synthesis parameters")
	cmd.Flags().StringVar(&f.format, "format", "json", "output format: json or markdown")
	cmd.Flags().StringVar(&f.out, "out", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&f.withQA, "qa", false, "print the quality validation report to stderr")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runSynthesize(ctx context.Context, g *globalFlags, f synthesizeFlags, stdout, stderr io.Writer) error {
	if f.format != "json" && f.format != "markdown" {
		return fmt.Errorf("unknown --format %q (want json or markdown)", f.format)
	}
	cfg, logger, err := g.load(stderr)
	if err != nil {
		return err
	}
	prompts, err := prompt.NewRegistry(cfg.PromptDir)
	if err != nil {
		return err
	}
	var p synthesis.Params
	if err := readJSON(f.inputFile, &p); err != nil {
		return err
	}

	res := synthesis.New(llm.NewClient(cfg.LLM, logger), prompts, cfg.Synthesis, logger).Run(ctx, p)

	var out []byte
	if f.format == "markdown" {
		out = []byte(render.RenderMarkdown(res))
	} else {
		b, err := render.RenderJSON(res)
		if err != nil {
			return err
		}
		out = append(b, '\n')
	}
	if err := writeOutput(stdout, f.out, out); err != nil {
		return err
	}

	if f.withQA {
		rep, err := qa.ValidateReportQuality(res)
		if err != nil {
			return err
		}
		fmt.Fprint(stderr, qa.GenerateQAReport(rep))
	}
	return nil
}
