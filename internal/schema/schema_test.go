package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTextList_Unmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`"Book a call"`, []string{"Book a call"}},
		{`["a", "b"]`, []string{"a", "b"}},
		{`"  "`, nil},
		{`[]`, []string{}},
	}
	for _, c := range cases {
		var got TextList
		if err := json.Unmarshal([]byte(c.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", c.in, err)
		}
		if len(got) != len(c.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Unmarshal(%s)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
	var bad TextList
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("expected error for a number")
	}
}

func TestExecutiveSummary_AcceptsBareStrings(t *testing.T) {
	raw := `{
		"overview": "Slow site (SS-1).",
		"keyFindings": ["Hero is heavy (SS-2)", {"title": "No sitemap", "evidence": ["SS-3"]}],
		"priorityActions": ["Compress images", {"title": "Add sitemap", "timeline": "1 week"}],
		"nextSteps": "Book a call"
	}`
	var s ExecutiveSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(s.KeyFindings) != 2 || s.KeyFindings[0].Title != "Hero is heavy (SS-2)" || s.KeyFindings[1].Evidence[0] != "SS-3" {
		t.Errorf("KeyFindings = %+v", s.KeyFindings)
	}
	if len(s.PriorityActions) != 2 || s.PriorityActions[0].Title != "Compress images" || s.PriorityActions[1].Timeline != "1 week" {
		t.Errorf("PriorityActions = %+v", s.PriorityActions)
	}
	text := s.CitationText()
	for _, want := range []string{"SS-1", "SS-2", "SS-3", "Book a call"} {
		if !strings.Contains(text, want) {
			t.Errorf("CitationText missing %q", want)
		}
	}
}

func TestCitationText_NilSummary(t *testing.T) {
	var s *ExecutiveSummary
	if s.CitationText() != "" {
		t.Error("nil summary should have empty citation text")
	}
}

func TestConsolidatedIssue_CitationText(t *testing.T) {
	iss := ConsolidatedIssue{
		Title:          "Slow hero",
		Recommendation: "see SS-4",
		Evidence:       []string{"SS-2 shows it"},
		ScreenshotRefs: []string{"SS-1"},
	}
	text := iss.CitationText()
	for _, want := range []string{"SS-1", "SS-2", "SS-4"} {
		if !strings.Contains(text, want) {
			t.Errorf("CitationText missing %q", want)
		}
	}
}

func TestStageError_Error(t *testing.T) {
	e := StageError{Stage: StageDeduplication, Message: "timeout"}
	if e.Error() != "issue-deduplication: timeout" {
		t.Errorf("Error() = %q", e.Error())
	}
}
