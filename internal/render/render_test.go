package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

func sampleResult() *schema.SynthesisResult {
	return &schema.SynthesisResult{
		RunID:       "3f1c7d2e-0000-4000-8000-000000000001",
		Status:      schema.RunPartial,
		CompanyName: "Acme Dental",
		ConsolidatedIssues: []schema.ConsolidatedIssue{
			{
				ID:             "FALLBACK-1",
				Title:          "Hero image is slow",
				Severity:       schema.SeverityHigh,
				Sources:        []string{"desktop-visual"},
				Evidence:       []string{"LCP 4.2s"},
				ScreenshotRefs: []string{"SS-1"},
				AffectedPages:  []string{"https://acme.test/"},
				Recommendation: "compress to webp",
			},
			{
				ID:             "FALLBACK-2",
				Title:          "Missing meta description",
				Sources:        []string{"seo"},
				Evidence:       []string{},
				ScreenshotRefs: []string{},
				AffectedPages:  []string{},
			},
		},
		ExecutiveSummary: &schema.ExecutiveSummary{
			Overview:        "The site loads slowly (SS-1).",
			KeyFindings:     []schema.Finding{{Title: "Slow hero", Evidence: []string{"SS-1"}}},
			PriorityActions: []schema.Action{{Title: "Compress images", Timeline: "1 week"}},
			NextSteps:       schema.TextList{"Book a call"},
		},
		ScreenshotReferences: []schema.ScreenshotReference{
			{ID: "SS-1", PageURL: "https://acme.test/", Viewport: schema.ViewportDesktop, Path: "home|d.png"},
			{ID: "SS-2", PageURL: "https://acme.test/", Viewport: schema.ViewportMobile, Path: "home-m.png"},
		},
		Statistics: &schema.DedupStatistics{OriginalCount: 2, ConsolidatedCount: 2},
		Errors:     []schema.StageError{{Stage: schema.StageDeduplication, Message: "upstream 503"}},
	}
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	res := sampleResult()
	b, err := RenderJSON(res)
	if err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	var got schema.SynthesisResult
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	if got.Status != res.Status || got.RunID != res.RunID {
		t.Errorf("status/run mismatch: got %s/%s", got.Status, got.RunID)
	}
	if len(got.ConsolidatedIssues) != 2 || got.ConsolidatedIssues[0].ID != "FALLBACK-1" {
		t.Errorf("issues mismatch: %+v", got.ConsolidatedIssues)
	}
	if len(got.Errors) != 1 || got.Errors[0].Stage != schema.StageDeduplication {
		t.Errorf("errors mismatch: %+v", got.Errors)
	}
	if got.ExecutiveSummary == nil || got.ExecutiveSummary.NextSteps[0] != "Book a call" {
		t.Errorf("summary mismatch: %+v", got.ExecutiveSummary)
	}
	if !strings.Contains(string(b), "\n  ") {
		t.Error("expected indentation in pretty-printed JSON output")
	}
}

func TestRenderJSON_Nil(t *testing.T) {
	if _, err := RenderJSON(nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestRenderMarkdown_ContainsAllIDs(t *testing.T) {
	md := RenderMarkdown(sampleResult())
	for _, id := range []string{"FALLBACK-1", "FALLBACK-2", "SS-1", "SS-2"} {
		if !strings.Contains(md, id) {
			t.Errorf("markdown output missing ID %q", id)
		}
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	md := RenderMarkdown(sampleResult())
	for _, want := range []string{
		"## Website Report: Acme Dental",
		"**Status:** PARTIAL",
		"`issue-deduplication`: upstream 503",
		"[High] Hero image is slow",
		"[Unrated] Missing meta description",
		"**Recommendation:** compress to webp",
		"1. **Compress images** (1 week)",
		"| SS-2 | https://acme.test/ | Mobile |",
		`home\|d.png`,
		"(0.0% reduction)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoSummary(t *testing.T) {
	res := sampleResult()
	res.ExecutiveSummary = nil
	if md := RenderMarkdown(res); !strings.Contains(md, "No executive summary was generated") {
		t.Error("missing-summary notice not rendered")
	}
	if RenderMarkdown(nil) != "" {
		t.Error("nil result should render empty")
	}
}
