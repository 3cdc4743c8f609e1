//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/belivan/MaxantAgency-sub013/internal/llm"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

const testdata = "../../testdata/"

const gradeMockResponse = `{
  "overall_grade": "C",
  "overall_score": 64,
  "lead_score": 81,
  "dimension_weights_used": {"design": 30, "seo": 30, "content": 20, "social": 20},
  "comparison_summary": {"gap": 27, "gap_assessment": "significant", "weakest_areas": ["social"]},
  "grading_rationale": "Trails the regional leader on social proof."
}`

const dedupMockResponse = `{
  "consolidatedIssues": [
    {"id": "ISSUE-1", "title": "Oversized hero image", "description": "The 3 MB hero delays first paint.",
     "severity": "high", "sources": ["desktop-visual", "mobile-visual"], "evidence": ["LCP 4.2s"],
     "screenshotRefs": ["SS-1", "SS-2"], "affectedPages": ["https://acme-dental.example/"]},
    {"id": "ISSUE-2", "title": "Missing meta descriptions", "severity": "medium", "sources": ["seo"],
     "screenshotRefs": ["SS-3"], "affectedPages": ["https://acme-dental.example/services"]}
  ],
  "mergeLog": [{"consolidatedId": "ISSUE-1", "mergedIssues": ["desktop-visual: Hero image is 3 MB", "mobile-visual: Hero image dominates the first screen"]}]
}`

const summaryMockResponse = `{"executiveSummary": {
  "overview": "Acme Dental's homepage is slow on every device and key pages are missing search snippets (SS-1, SS-3).",
  "keyFindings": [{"title": "Slow hero", "evidence": ["SS-1"]}, {"title": "Mobile hero crowding", "evidence": ["SS-2"]}, {"title": "No meta descriptions"}],
  "priorityActions": [{"title": "Compress the hero"}, {"title": "Write meta descriptions"}, {"title": "Add reviews"}],
  "nextSteps": ["Book a walkthrough"]}}`

// routingProvider answers by prompt. It is stateless so concurrent stages
// can share it.
type routingProvider struct{}

func (routingProvider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	var content string
	switch {
	case strings.Contains(req.UserPrompt, "RAW ISSUES BY MODULE"):
		content = dedupMockResponse
	case strings.Contains(req.UserPrompt, "Produce the executive summary"):
		content = summaryMockResponse
	case strings.Contains(req.UserPrompt, "Comparison payload"):
		content = gradeMockResponse
	default:
		return nil, fmt.Errorf("mock: unexpected prompt")
	}
	return &llm.Response{Content: content, Model: "mock"}, nil
}

type errorProvider struct{}

func (errorProvider) Complete(context.Context, llm.Request) (*llm.Response, error) {
	return nil, fmt.Errorf("simulated API error")
}

func injectProvider(t *testing.T, p llm.Provider) {
	t.Helper()
	orig := llm.NewProvider
	llm.NewProvider = func(string) (llm.Provider, error) { return p, nil }
	t.Cleanup(func() { llm.NewProvider = orig })
}

func quietFlags() *globalFlags {
	return &globalFlags{logLevel: "error"}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestIntegration_Grade(t *testing.T) {
	cases := []struct {
		name    string
		grading string
		letter  string
	}{
		{"default scale", "", "B"},
		{"stricter scale", testdata + "grading.yaml", "C"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := runGrade(quietFlags(), gradeFlags{scoresFile: testdata + "scores.json", gradingFile: c.grading}, &out, &errOut)
			if err != nil {
				t.Fatalf("runGrade: %v", err)
			}
			var res schema.GradeResult
			if err := json.Unmarshal(out.Bytes(), &res); err != nil {
				t.Fatalf("decode output: %v", err)
			}
			if res.OverallScore != 72.5 || res.Letter != c.letter {
				t.Errorf("got %s %v, want %s 72.5", res.Letter, res.OverallScore, c.letter)
			}
			if len(res.Breakdown.Penalties) != 1 || res.Breakdown.Penalties[0].Points != -10 {
				t.Errorf("penalties = %+v", res.Breakdown.Penalties)
			}
		})
	}
}

func TestIntegration_GradeInvalidScores(t *testing.T) {
	path := writeTemp(t, "scores.json", `{"scores": {"design": 120}}`)
	var out, errOut bytes.Buffer
	err := runGrade(quietFlags(), gradeFlags{scoresFile: path}, &out, &errOut)
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit %d, want 1 (err %v)", code, err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestIntegration_GradeAI(t *testing.T) {
	injectProvider(t, routingProvider{})
	var out, errOut bytes.Buffer
	f := gradeAIFlags{analysisFile: testdata + "analysis.json", benchmarksFile: testdata + "catalog.yaml", hasActiveAds: true}
	if err := runGradeAI(context.Background(), quietFlags(), f, &out, &errOut); err != nil {
		t.Fatalf("runGradeAI: %v", err)
	}
	var res schema.AIGradeResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if res.GradingMethod != schema.GradingAIComparative {
		t.Fatalf("method = %s (%s)", res.GradingMethod, res.FallbackReason)
	}
	if res.OverallGrade != "C" || res.OverallScore != 64 || res.PriorityTier != schema.TierHot {
		t.Errorf("grade = %s %v tier %s", res.OverallGrade, res.OverallScore, res.PriorityTier)
	}
	if res.BudgetLikelihood != schema.BudgetMedium {
		t.Errorf("budget = %s, want medium from one business signal", res.BudgetLikelihood)
	}
	if res.Benchmark == nil || res.Benchmark.CompanyName != "Bright Smiles Family Dentistry" {
		t.Errorf("benchmark = %+v", res.Benchmark)
	}
}

func TestIntegration_GradeAIFallback(t *testing.T) {
	injectProvider(t, errorProvider{})
	var out, errOut bytes.Buffer
	f := gradeAIFlags{analysisFile: testdata + "analysis.json", benchmarksFile: testdata + "catalog.yaml"}
	if err := runGradeAI(context.Background(), quietFlags(), f, &out, &errOut); err != nil {
		t.Fatalf("runGradeAI: %v", err)
	}
	var res schema.AIGradeResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if res.GradingMethod != schema.GradingManualFallback || res.Fallback == nil {
		t.Fatalf("method = %s fallback = %v", res.GradingMethod, res.Fallback)
	}
	if res.OverallGrade != "B" || res.OverallScore != 82.5 {
		t.Errorf("fallback grade = %s %v, want B 82.5", res.OverallGrade, res.OverallScore)
	}
	if !strings.Contains(res.FallbackReason, "simulated API error") {
		t.Errorf("reason = %q", res.FallbackReason)
	}
}

func TestIntegration_Synthesize(t *testing.T) {
	injectProvider(t, routingProvider{})
	var out, errOut bytes.Buffer
	f := synthesizeFlags{inputFile: testdata + "params.json", format: "json", withQA: true}
	if err := runSynthesize(context.Background(), quietFlags(), f, &out, &errOut); err != nil {
		t.Fatalf("runSynthesize: %v", err)
	}
	var res schema.SynthesisResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if res.Status != schema.RunComplete || len(res.ConsolidatedIssues) != 2 || res.ExecutiveSummary == nil {
		t.Fatalf("status = %s issues = %d summary = %v errors = %+v",
			res.Status, len(res.ConsolidatedIssues), res.ExecutiveSummary != nil, res.Errors)
	}
	if len(res.ScreenshotReferences) != 3 || res.ScreenshotReferences[2].ID != "SS-3" {
		t.Errorf("references = %+v", res.ScreenshotReferences)
	}
	if !strings.Contains(errOut.String(), "REPORT QUALITY VALIDATION") {
		t.Errorf("QA report not written to stderr:\n%s", errOut.String())
	}
}

func TestIntegration_SynthesizeOutage(t *testing.T) {
	injectProvider(t, errorProvider{})
	var out, errOut bytes.Buffer
	f := synthesizeFlags{inputFile: testdata + "params.json", format: "markdown", withQA: true}
	if err := runSynthesize(context.Background(), quietFlags(), f, &out, &errOut); err != nil {
		t.Fatalf("runSynthesize: %v", err)
	}
	md := out.String()
	for _, want := range []string{"**Status:** PARTIAL", "FALLBACK-1", "FALLBACK-3", "No executive summary was generated", "SS-3"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if !strings.Contains(errOut.String(), "FAIL") {
		t.Errorf("QA report should fail an outage run:\n%s", errOut.String())
	}
}

func TestIntegration_SynthesizeBadFormat(t *testing.T) {
	var out, errOut bytes.Buffer
	err := runSynthesize(context.Background(), quietFlags(), synthesizeFlags{inputFile: testdata + "params.json", format: "pdf"}, &out, &errOut)
	if exitCode(err) != 1 {
		t.Errorf("exit %d, want 1", exitCode(err))
	}
}

func TestIntegration_QA(t *testing.T) {
	cases := []struct {
		failOn string
		code   int
	}{
		{"", 0},
		{"FAIL", 2},
		{"warn", 2},
		{"BOGUS", 1},
	}
	for _, c := range cases {
		t.Run("fail-on="+c.failOn, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := runQA(quietFlags(), qaFlags{inputFile: testdata + "result_partial.json", format: "text", failOn: c.failOn}, &out, &errOut)
			if code := exitCode(err); code != c.code {
				t.Fatalf("exit %d, want %d (err %v)", code, c.code, err)
			}
			if c.code != 1 && !strings.Contains(out.String(), "Quality score: 62/100") {
				t.Errorf("unexpected report:\n%s", out.String())
			}
		})
	}
}

func TestIntegration_QAJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := runQA(quietFlags(), qaFlags{inputFile: testdata + "result_partial.json", format: "json"}, &out, &errOut); err != nil {
		t.Fatalf("runQA: %v", err)
	}
	var rep schema.QAReport
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if rep.Status != schema.TierFail || rep.QualityScore != 62 {
		t.Errorf("status = %s score = %d, want FAIL 62", rep.Status, rep.QualityScore)
	}
	missing := rep.ExecutiveSummaryValidation.ScreenshotReferences.Missing
	if len(missing) != 1 || missing[0] != "SS-7" {
		t.Errorf("missing references = %v, want [SS-7]", missing)
	}
}
