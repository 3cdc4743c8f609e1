// Package render produces output from a synthesis result.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// RenderJSON produces a pretty-printed JSON representation of the result.
// The output round-trips through json.Unmarshal back to an equal result.
func RenderJSON(res *schema.SynthesisResult) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("render: nil synthesis result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: json marshal: %w", err)
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown report for reviewers.
// Every issue ID and screenshot reference ID in the result appears in the
// output.
func RenderMarkdown(res *schema.SynthesisResult) string {
	if res == nil {
		return ""
	}
	var sb strings.Builder
	title := cases.Title(language.English)

	name := res.CompanyName
	if name == "" {
		name = "Unnamed prospect"
	}
	fmt.Fprintf(&sb, "## Website Report: %s\n\n", name)
	fmt.Fprintf(&sb, "**Status:** %s  \n", res.Status)
	fmt.Fprintf(&sb, "**Run:** `%s`  \n", res.RunID)
	fmt.Fprintf(&sb, "**Issues:** %d | **Screenshots:** %d | **Stage errors:** %d\n\n",
		len(res.ConsolidatedIssues), len(res.ScreenshotReferences), len(res.Errors))

	if len(res.Errors) > 0 {
		sb.WriteString("> **Partial result.** Failed stages:\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&sb, "> - `%s`: %s\n", e.Stage, mdEscape(e.Message))
		}
		sb.WriteString("\n")
	}

	writeSummary(&sb, res.ExecutiveSummary)

	if len(res.ConsolidatedIssues) > 0 {
		sb.WriteString("## Issues\n\n")
		for _, iss := range res.ConsolidatedIssues {
			sev := "Unrated"
			if iss.Severity != "" {
				sev = title.String(string(iss.Severity))
			}
			fmt.Fprintf(&sb, "<details>\n<summary><strong>%s</strong> [%s] %s</summary>\n\n",
				iss.ID, sev, mdEscape(iss.Title))
			if iss.Description != "" {
				fmt.Fprintf(&sb, "%s\n\n", iss.Description)
			}
			if len(iss.Sources) > 0 {
				fmt.Fprintf(&sb, "**Reported by:** %s\n\n", strings.Join(iss.Sources, ", "))
			}
			writeList(&sb, "Evidence", iss.Evidence)
			if len(iss.ScreenshotRefs) > 0 {
				fmt.Fprintf(&sb, "**Screenshots:** %s\n\n", strings.Join(iss.ScreenshotRefs, ", "))
			}
			writeList(&sb, "Affected pages", iss.AffectedPages)
			if iss.Recommendation != "" {
				fmt.Fprintf(&sb, "**Recommendation:** %s\n\n", mdEscape(iss.Recommendation))
			}
			sb.WriteString("</details>\n\n")
		}
	}

	if len(res.ScreenshotReferences) > 0 {
		sb.WriteString("## Screenshot References\n\n")
		sb.WriteString("| ID | Page | Viewport | Path |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, r := range res.ScreenshotReferences {
			fmt.Fprintf(&sb, "| %s | %s | %s | `%s` |\n",
				r.ID, mdEscape(r.PageURL), title.String(string(r.Viewport)), mdEscape(r.Path))
		}
		sb.WriteString("\n")
	}

	if s := res.Statistics; s != nil {
		fmt.Fprintf(&sb, "_Deduplication: %d raw issues consolidated into %d (%.1f%% reduction)._\n",
			s.OriginalCount, s.ConsolidatedCount, s.ReductionPercent)
	}
	return sb.String()
}

func writeSummary(sb *strings.Builder, s *schema.ExecutiveSummary) {
	sb.WriteString("## Executive Summary\n\n")
	if s == nil {
		sb.WriteString("_No executive summary was generated._\n\n")
		return
	}
	if s.Overview != "" {
		fmt.Fprintf(sb, "%s\n\n", s.Overview)
	}
	if len(s.KeyFindings) > 0 {
		sb.WriteString("### Key Findings\n\n")
		for _, f := range s.KeyFindings {
			fmt.Fprintf(sb, "- **%s**", f.Title)
			if f.Description != "" {
				fmt.Fprintf(sb, ": %s", f.Description)
			}
			if f.Impact != "" {
				fmt.Fprintf(sb, " _Impact: %s_", f.Impact)
			}
			if len(f.Evidence) > 0 {
				fmt.Fprintf(sb, " (%s)", strings.Join(f.Evidence, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	if len(s.PriorityActions) > 0 {
		sb.WriteString("### Priority Actions\n\n")
		for i, a := range s.PriorityActions {
			fmt.Fprintf(sb, "%d. **%s**", i+1, a.Title)
			if a.Timeline != "" {
				fmt.Fprintf(sb, " (%s)", a.Timeline)
			}
			if a.Description != "" {
				fmt.Fprintf(sb, ": %s", a.Description)
			}
			if len(a.Evidence) > 0 {
				fmt.Fprintf(sb, " (%s)", strings.Join(a.Evidence, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	writeList(sb, "Next steps", s.NextSteps)
}

// writeList renders a labelled bullet list into sb.
func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s:**\n\n", label)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
	sb.WriteString("\n")
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
