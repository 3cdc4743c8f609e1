package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/belivan/MaxantAgency-sub013/internal/issues"
	"github.com/belivan/MaxantAgency-sub013/internal/llm"
	"github.com/belivan/MaxantAgency-sub013/internal/prompt"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

var (
	errNoConsolidatedIssues = errors.New("response contained no consolidated issues")
	errNoExecutiveSummary   = errors.New("response missing executiveSummary")
)

type dedupOutcome struct {
	issues   []schema.ConsolidatedIssue
	mergeLog []schema.MergeEntry
	stats    *schema.DedupStatistics
	info     schema.StageInfo
	err      *schema.StageError
}

type summaryOutcome struct {
	summary  *schema.ExecutiveSummary
	metadata json.RawMessage
	info     schema.StageInfo
	err      *schema.StageError
}

type dedupResponse struct {
	ConsolidatedIssues []schema.ConsolidatedIssue `json:"consolidatedIssues"`
	MergeLog           []schema.MergeEntry        `json:"mergeLog"`
	Statistics         *schema.DedupStatistics    `json:"statistics"`
}

type summaryResponse struct {
	ExecutiveSummary *schema.ExecutiveSummary `json:"executiveSummary"`
	Metadata         json.RawMessage          `json:"metadata"`
}

func (o *Orchestrator) runDeduplication(ctx context.Context, p Params, refs []schema.ScreenshotReference, log *slog.Logger) dedupOutcome {
	log = log.With("stage", schema.StageDeduplication)
	start := time.Now()
	rawCount := issues.Count(p.Issues)

	var out dedupOutcome
	err := protect(schema.StageDeduplication, func() error {
		if rawCount == 0 {
			out.issues = []schema.ConsolidatedIssue{}
			out.info.Status = schema.StageSuccess
			return nil
		}
		var resp dedupResponse
		model, usage, err := o.complete(ctx, prompt.NamespaceIssueDeduplication, map[string]any{
			"CompanyName":          p.CompanyName,
			"Issues":               p.Issues,
			"ScreenshotReferences": refs,
		}, &resp)
		if err != nil {
			return err
		}
		if len(resp.ConsolidatedIssues) == 0 {
			return errNoConsolidatedIssues
		}
		out.issues = normalizeIssues(resp.ConsolidatedIssues)
		out.mergeLog = resp.MergeLog
		out.stats = resp.Statistics
		out.info = schema.StageInfo{Status: schema.StageSuccess, Model: model, Usage: usage}
		return nil
	})
	if err != nil {
		log.Warn("deduplication failed, using fallback formatter", "error", err)
		out = dedupOutcome{
			issues: FallbackIssues(p.Issues, refs, o.perModule),
			info:   schema.StageInfo{Status: schema.StageFallback},
			err:    stageError(schema.StageDeduplication, err),
		}
	}
	if out.stats == nil || (out.stats.OriginalCount == 0 && rawCount > 0) {
		out.stats = Statistics(rawCount, len(out.issues))
	}
	out.info.DurationMs = since(start)
	log.Debug("stage done", "status", out.info.Status, "issues", len(out.issues), "duration_ms", out.info.DurationMs)
	return out
}

func (o *Orchestrator) runExecutiveSummary(ctx context.Context, p Params, refs []schema.ScreenshotReference, log *slog.Logger) summaryOutcome {
	log = log.With("stage", schema.StageExecutiveSummary)
	start := time.Now()

	var out summaryOutcome
	err := protect(schema.StageExecutiveSummary, func() error {
		var resp summaryResponse
		model, usage, err := o.complete(ctx, prompt.NamespaceExecutiveSummary, map[string]any{
			"CompanyName":          p.CompanyName,
			"Industry":             p.Industry,
			"Grade":                p.Grade,
			"OverallScore":         p.OverallScore,
			"LeadPriority":         p.LeadPriority,
			"Scores":               p.Scores,
			"Issues":               FallbackIssues(p.Issues, refs, o.perModule),
			"QuickWins":            p.QuickWins,
			"ScreenshotReferences": refs,
		}, &resp)
		if err != nil {
			return err
		}
		if resp.ExecutiveSummary == nil {
			return errNoExecutiveSummary
		}
		out.summary = resp.ExecutiveSummary
		if len(resp.Metadata) > 0 && string(resp.Metadata) != "null" {
			out.metadata = resp.Metadata
		}
		out.info = schema.StageInfo{Status: schema.StageSuccess, Model: model, Usage: usage}
		return nil
	})
	if err != nil {
		log.Warn("executive summary failed", "error", err)
		out = summaryOutcome{
			info: schema.StageInfo{Status: schema.StageFailed},
			err:  stageError(schema.StageExecutiveSummary, err),
		}
	}
	out.info.DurationMs = since(start)
	log.Debug("stage done", "status", out.info.Status, "duration_ms", out.info.DurationMs)
	return out
}

// complete loads a prompt, makes one JSON-mode call and decodes the reply
// into v.
func (o *Orchestrator) complete(ctx context.Context, namespace string, vars map[string]any, v any) (string, *schema.TokenUsage, error) {
	p, err := o.prompts.Load(namespace, vars)
	if err != nil {
		return "", nil, err
	}
	resp, err := o.completer.CallAI(ctx, llm.Request{
		Model:        p.Model,
		SystemPrompt: p.SystemPrompt,
		UserPrompt:   p.UserPrompt,
		Temperature:  p.Temperature,
		JSONMode:     true,
	})
	if err != nil {
		return "", nil, err
	}
	if err := llm.ParseJSONResponse(resp.Content, v); err != nil {
		return "", nil, err
	}
	model := resp.Model
	if model == "" {
		model = p.Model
	}
	return model, resp.Usage, nil
}

// normalizeIssues fills missing IDs and replaces nil lists with empty ones.
// Cited screenshot IDs are kept as returned; validating them is the QA
// stage's job.
func normalizeIssues(in []schema.ConsolidatedIssue) []schema.ConsolidatedIssue {
	out := make([]schema.ConsolidatedIssue, len(in))
	for i, iss := range in {
		if iss.ID == "" {
			iss.ID = fmt.Sprintf("ISSUE-%d", i+1)
		}
		iss.Sources = orEmpty(iss.Sources)
		iss.Evidence = orEmpty(iss.Evidence)
		iss.ScreenshotRefs = orEmpty(iss.ScreenshotRefs)
		iss.AffectedPages = orEmpty(iss.AffectedPages)
		out[i] = iss
	}
	return out
}

// Statistics computes deduplication statistics from raw and consolidated
// counts. ReductionPercent is rounded to one decimal.
func Statistics(original, consolidated int) *schema.DedupStatistics {
	s := &schema.DedupStatistics{OriginalCount: original, ConsolidatedCount: consolidated}
	if original > 0 {
		s.ReductionPercent = math.Round(float64(original-consolidated)/float64(original)*1000) / 10
	}
	return s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
