package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/belivan/MaxantAgency-sub013/internal/benchmark"
	"github.com/belivan/MaxantAgency-sub013/internal/config"
	"github.com/belivan/MaxantAgency-sub013/internal/grading"
	"github.com/belivan/MaxantAgency-sub013/internal/llm"
	"github.com/belivan/MaxantAgency-sub013/internal/prompt"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

type gradeFlags struct {
	scoresFile  string
	gradingFile string
}

// gradeInput is the --scores file of the grade command.
type gradeInput struct {
	Scores   schema.DimensionScores `json:"scores"`
	Metadata schema.GradeMetadata   `json:"metadata"`
}

func newGradeCmd(g *globalFlags) *cobra.Command {
	var f gradeFlags
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade dimension scores with the deterministic engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrade(g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.scoresFile, "scores", "", "JSON file with scores and metadata")
	cmd.Flags().StringVar(&f.gradingFile, "grading", "", "YAML grading tables (overrides gradingFile in --config)")
	_ = cmd.MarkFlagRequired("scores")
	return cmd
}

func runGrade(g *globalFlags, f gradeFlags, stdout, stderr io.Writer) error {
	cfg, logger, err := g.load(stderr)
	if err != nil {
		return err
	}
	tables := cfg.Grading
	if f.gradingFile != "" {
		if tables, err = config.LoadGrading(f.gradingFile); err != nil {
			return err
		}
	}
	var in gradeInput
	if err := readJSON(f.scoresFile, &in); err != nil {
		return err
	}
	res, err := grading.NewEngine(tables).CalculateGrade(in.Scores, in.Metadata)
	if err != nil {
		return err
	}
	logger.Info("graded", "letter", res.Letter, "score", res.OverallScore, "weights", res.WeightTable)
	return writeJSON(stdout, res)
}

type gradeAIFlags struct {
	analysisFile      string
	benchmarksFile    string
	hasActiveAds      bool
	established       bool
	industryOptimized bool
}

func newGradeAICmd(g *globalFlags) *cobra.Command {
	var f gradeAIFlags
	cmd := &cobra.Command{
		Use:   "grade-ai",
		Short: "Grade an analysis against its best industry benchmark",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGradeAI(cmd.Context(), g, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.analysisFile, "analysis", "", "JSON analysis result")
	cmd.Flags().StringVar(&f.benchmarksFile, "benchmarks", "", "YAML benchmark catalog (defaults to benchmarkCatalog in --config)")
	cmd.Flags().BoolVar(&f.hasActiveAds, "has-active-ads", false, "business runs paid ads")
	cmd.Flags().BoolVar(&f.established, "established", false, "business is established")
	cmd.Flags().BoolVar(&f.industryOptimized, "industry-optimized", false, "site is tailored to its industry")
	_ = cmd.MarkFlagRequired("analysis")
	return cmd
}

func runGradeAI(ctx context.Context, g *globalFlags, f gradeAIFlags, stdout, stderr io.Writer) error {
	cfg, logger, err := g.load(stderr)
	if err != nil {
		return err
	}
	catalogPath := f.benchmarksFile
	if catalogPath == "" {
		catalogPath = cfg.BenchmarkCatalog
	}
	if catalogPath == "" {
		return fmt.Errorf("--benchmarks is required when no benchmarkCatalog is configured")
	}
	catalog, err := benchmark.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	prompts, err := prompt.NewRegistry(cfg.PromptDir)
	if err != nil {
		return err
	}
	var a schema.AnalysisResult
	if err := readJSON(f.analysisFile, &a); err != nil {
		return err
	}

	grader := grading.NewGrader(
		grading.NewEngine(cfg.Grading),
		catalog,
		prompts,
		llm.NewClient(cfg.LLM, logger),
		cfg.Synthesis.GradingIssuesPerModule,
		logger,
	)
	res := grader.GradeWithAI(ctx, a, schema.BusinessMetadata{
		HasActiveAds:      f.hasActiveAds,
		IsEstablished:     f.established,
		IndustryOptimized: f.industryOptimized,
	})
	logger.Info("graded with benchmark", "method", res.GradingMethod, "grade", res.OverallGrade, "score", res.OverallScore)
	return writeJSON(stdout, res)
}
