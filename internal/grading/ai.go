package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/belivan/MaxantAgency-sub013/internal/benchmark"
	"github.com/belivan/MaxantAgency-sub013/internal/issues"
	"github.com/belivan/MaxantAgency-sub013/internal/llm"
	"github.com/belivan/MaxantAgency-sub013/internal/logging"
	"github.com/belivan/MaxantAgency-sub013/internal/prompt"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// Grader performs AI-comparative grading: benchmark match, then one AI call.
type Grader struct {
	engine          *Engine
	matcher         benchmark.Matcher
	prompts         prompt.Loader
	completer       llm.Completer
	issuesPerModule int
	logger          *slog.Logger
}

// NewGrader wires the collaborators used by GradeWithAI. issuesPerModule caps
// the issues each module contributes to the comparison payload.
func NewGrader(engine *Engine, matcher benchmark.Matcher, prompts prompt.Loader, completer llm.Completer, issuesPerModule int, logger *slog.Logger) *Grader {
	return &Grader{
		engine:          engine,
		matcher:         matcher,
		prompts:         prompts,
		completer:       completer,
		issuesPerModule: issuesPerModule,
		logger:          logging.OrDiscard(logger).With("component", "grading"),
	}
}

// comparisonPayload is the data the model compares.
type comparisonPayload struct {
	Target        targetProfile         `json:"target"`
	Benchmark     *schema.Benchmark     `json:"benchmark"`
	MatchMetadata *schema.MatchMetadata `json:"match_metadata,omitempty"`
}

type targetProfile struct {
	CompanyName string                       `json:"company_name"`
	Industry    string                       `json:"industry"`
	URL         string                       `json:"url"`
	Scores      schema.DimensionScores       `json:"scores"`
	TopIssues   map[string][]schema.RawIssue `json:"top_issues"`
	QuickWins   []string                     `json:"quick_wins,omitempty"`
	Signals     schema.BusinessMetadata      `json:"business_signals"`
}

// rawAIGrade mirrors the requested response with loosely typed fields, so
// that shape drift in the model output never fails decoding.
type rawAIGrade struct {
	OverallGrade         any             `json:"overall_grade"`
	OverallScore         any             `json:"overall_score"`
	LeadScore            any             `json:"lead_score"`
	PriorityTier         any             `json:"priority_tier"`
	BudgetLikelihood     any             `json:"budget_likelihood"`
	DimensionWeightsUsed any             `json:"dimension_weights_used"`
	ComparisonSummary    any             `json:"comparison_summary"`
	BusinessContext      json.RawMessage `json:"business_context"`
	SalesInsights        json.RawMessage `json:"sales_insights"`
	GradingRationale     any             `json:"grading_rationale"`
}

// GradeWithAI grades the analysis against its best benchmark. It never
// fails: any collaborator error or panic yields the deterministic
// manual-fallback result.
func (g *Grader) GradeWithAI(ctx context.Context, a schema.AnalysisResult, meta schema.BusinessMetadata) (result *schema.AIGradeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = g.fallback(a, meta, fmt.Sprintf("panic during AI grading: %v", r))
		}
	}()

	match, err := g.matcher.FindBestBenchmark(ctx, benchmark.Criteria{
		CompanyName:          a.CompanyName,
		Industry:             a.Industry,
		URL:                  a.URL,
		City:                 a.City,
		State:                a.State,
		BusinessIntelligence: a.BusinessIntelligence,
		ICPCriteria:          a.ICPCriteria,
	})
	if err != nil {
		return g.fallback(a, meta, fmt.Sprintf("benchmark lookup failed: %v", err))
	}
	if match == nil || !match.Success || match.Benchmark == nil {
		return g.fallback(a, meta, benchmark.ErrNoBenchmark.Error())
	}

	res, err := g.compare(ctx, a, meta, match)
	if err != nil {
		return g.fallback(a, meta, fmt.Sprintf("AI comparison failed: %v", err))
	}
	return res
}

func (g *Grader) compare(ctx context.Context, a schema.AnalysisResult, meta schema.BusinessMetadata, match *benchmark.Match) (*schema.AIGradeResult, error) {
	payload := comparisonPayload{
		Target: targetProfile{
			CompanyName: a.CompanyName,
			Industry:    a.Industry,
			URL:         a.URL,
			Scores:      a.Scores,
			TopIssues:   issues.TopNPerModule(a.Issues, g.issuesPerModule),
			QuickWins:   a.QuickWins,
			Signals:     meta,
		},
		Benchmark:     match.Benchmark,
		MatchMetadata: match.MatchMetadata,
	}
	p, err := g.prompts.Load(prompt.NamespaceBenchmarkComparison, map[string]any{
		"CompanyName": a.CompanyName,
		"Industry":    a.Industry,
		"Payload":     payload,
	})
	if err != nil {
		return nil, err
	}
	resp, err := g.completer.CallAI(ctx, llm.Request{
		Model:        p.Model,
		SystemPrompt: p.SystemPrompt,
		UserPrompt:   p.UserPrompt,
		Temperature:  p.Temperature,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}
	var raw rawAIGrade
	if err := llm.ParseJSONResponse(resp.Content, &raw); err != nil {
		return nil, err
	}

	res := g.fromModel(raw, a, meta)
	res.Benchmark = match.Benchmark
	res.MatchMetadata = match.MatchMetadata
	res.Model = resp.Model
	res.Usage = resp.Usage
	if res.ComparisonSummary != nil && res.Derivations["comparison_summary.gap"] == "benchmark-delta" {
		res.ComparisonSummary.Gap = round1(match.Benchmark.OverallScore - res.OverallScore)
	}
	return res, nil
}

// fromModel resolves every field of the model output through its strategy
// list. overall_score: model value, then the weighted sum with the model's
// weights, then the weighted sum with the configured base weights.
func (g *Grader) fromModel(raw rawAIGrade, a schema.AnalysisResult, meta schema.BusinessMetadata) *schema.AIGradeResult {
	cfg := g.engine.Config()
	d := make(map[string]string)

	modelWeights, haveWeights := weightsFrom(raw.DimensionWeightsUsed)
	weightsUsed := cfg.Weights
	if haveWeights {
		weightsUsed = modelWeights
	}

	scores := validScores(a.Scores)
	recompute := func(w map[string]float64) float64 {
		return round1(clamp(WeightedScore(g.engine.withDefaults(scores, w), w), 0, 100))
	}
	score, scoreSrc := firstOf(recompute(cfg.Weights), "default-weights",
		strategy[float64]{"model", func() (float64, bool) { return scoreFrom(raw.OverallScore) }},
		strategy[float64]{"model-weights", func() (float64, bool) {
			if !haveWeights {
				return 0, false
			}
			return recompute(modelWeights), true
		}},
	)
	d["overall_score"] = scoreSrc

	letter, letterSrc := firstOf(cfg.LetterFor(score).Letter, "scale",
		strategy[string]{"model", func() (string, bool) { return letterFrom(raw.OverallGrade) }},
	)
	d["overall_grade"] = letterSrc

	var lead *float64
	if v, ok := scoreFrom(raw.LeadScore); ok {
		lead = &v
		d["lead_score"] = "model"
	}
	tier, budget := derivePriority(raw.PriorityTier, raw.BudgetLikelihood, lead, meta, d)

	res := &schema.AIGradeResult{
		GradingMethod:        schema.GradingAIComparative,
		OverallGrade:         letter,
		OverallScore:         score,
		LeadScore:            lead,
		PriorityTier:         tier,
		BudgetLikelihood:     budget,
		DimensionWeightsUsed: copyWeights(weightsUsed),
		BusinessContext:      nonNull(raw.BusinessContext),
		SalesInsights:        nonNull(raw.SalesInsights),
		GradingRationale:     stringFrom(raw.GradingRationale),
		Derivations:          d,
	}
	if cs, ok := raw.ComparisonSummary.(map[string]any); ok {
		summary := &schema.ComparisonSummary{
			GapAssessment:  stringFrom(cs["gap_assessment"]),
			StrongestAreas: stringsFrom(cs["strongest_areas"]),
			WeakestAreas:   stringsFrom(cs["weakest_areas"]),
			QuickWins:      stringsFrom(cs["quick_wins"]),
		}
		if gap, ok := numberFrom(cs["gap"]); ok {
			summary.Gap = gap
			d["comparison_summary.gap"] = "model"
		} else {
			d["comparison_summary.gap"] = "benchmark-delta"
		}
		res.ComparisonSummary = summary
	}
	return res
}

// fallback grades deterministically from the analysis. Scores outside
// [0, 100] are dropped and replaced by the configured defaults.
func (g *Grader) fallback(a schema.AnalysisResult, meta schema.BusinessMetadata, reason string) *schema.AIGradeResult {
	g.logger.Warn("AI grading fell back to deterministic grading", "company", a.CompanyName, "reason", reason)

	scores, gradeMeta := FallbackInputs(a, meta)
	grade, err := g.engine.CalculateGrade(scores, gradeMeta)
	if err != nil {
		// FallbackInputs only passes in-range scores, so this is unreachable
		// unless the engine rules change.
		grade = &schema.GradeResult{Letter: "F", Label: "Failing", WeightsUsed: map[string]float64{}}
		reason += "; " + err.Error()
	}
	d := map[string]string{"overall_score": "deterministic", "overall_grade": "deterministic"}
	tier, budget := derivePriority(nil, nil, nil, meta, d)
	return &schema.AIGradeResult{
		GradingMethod:        schema.GradingManualFallback,
		OverallGrade:         grade.Letter,
		OverallScore:         grade.OverallScore,
		PriorityTier:         tier,
		BudgetLikelihood:     budget,
		DimensionWeightsUsed: grade.WeightsUsed,
		Derivations:          d,
		Fallback:             grade,
		FallbackReason:       reason,
	}
}

// FallbackInputs is the fixed mapping from an analysis result to the
// deterministic engine's inputs.
func FallbackInputs(a schema.AnalysisResult, meta schema.BusinessMetadata) (schema.DimensionScores, schema.GradeMetadata) {
	return validScores(a.Scores), schema.GradeMetadata{
		QuickWinCount:     len(a.QuickWins),
		IsMobileFriendly:  a.IsMobileFriendly,
		HasHTTPS:          a.HasHTTPS,
		SiteAccessible:    a.SiteAccessible,
		Industry:          a.Industry,
		IndustryOptimized: meta.IndustryOptimized,
	}
}

// validScores keeps only finite scores in [0, 100]. Dropped dimensions take
// the configured defaults.
func validScores(in schema.DimensionScores) schema.DimensionScores {
	out := make(schema.DimensionScores, len(in))
	for d, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			continue
		}
		out[d] = v
	}
	return out
}

func nonNull(m json.RawMessage) json.RawMessage {
	if len(m) == 0 || string(m) == "null" {
		return nil
	}
	return m
}
