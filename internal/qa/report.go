package qa

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// GenerateQAReport renders a QA report as plain text for reviewers.
func GenerateQAReport(rep *schema.QAReport) string {
	if rep == nil {
		return ""
	}
	var sb strings.Builder
	s := rep.Summary
	titleCaser := cases.Title(language.English)

	sb.WriteString("REPORT QUALITY VALIDATION\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")
	fmt.Fprintf(&sb, "Status:        %s\n", rep.Status)
	fmt.Fprintf(&sb, "Quality score: %d/100\n\n", rep.QualityScore)

	sb.WriteString("Issues\n")
	fmt.Fprintf(&sb, "  Total: %d (excellent %d, good %d, acceptable %d, poor %d)\n",
		s.TotalIssues, s.ExcellentIssues, s.GoodIssues, s.AcceptableIssues, s.PoorIssues)
	for _, ev := range rep.IssueEvidence {
		if ev.Quality != schema.EvidencePoor && ev.Quality != schema.EvidenceAcceptable {
			continue
		}
		fmt.Fprintf(&sb, "  - %s %q: %s (%d/6), missing %s\n",
			ev.IssueID, ev.Title, titleCaser.String(string(ev.Quality)), ev.Score, strings.Join(ev.Missing, ", "))
	}
	sb.WriteString("\n")

	sv := rep.ExecutiveSummaryValidation
	fmt.Fprintf(&sb, "Executive summary: %s\n", titleCaser.String(string(sv.Quality)))
	for _, e := range sv.Errors {
		fmt.Fprintf(&sb, "  ERROR: %s\n", e)
	}
	for _, w := range sv.Warnings {
		fmt.Fprintf(&sb, "  WARN:  %s\n", w)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Screenshots: %d references, %d invalid citations\n",
		s.ScreenshotReferences, s.InvalidScreenshotReferences)
	if ids := rep.IssueScreenshotReferences.Missing; len(ids) > 0 {
		fmt.Fprintf(&sb, "  Unknown IDs in issues: %s\n", strings.Join(ids, ", "))
	}
	if ids := sv.ScreenshotReferences.Missing; len(ids) > 0 {
		fmt.Fprintf(&sb, "  Unknown IDs in summary: %s\n", strings.Join(ids, ", "))
	}
	fmt.Fprintf(&sb, "Synthesis errors: %d\n\n", s.SynthesisErrors)

	sb.WriteString("Recommendations\n")
	for i, r := range rep.Recommendations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, r)
	}
	return sb.String()
}
