// Package qa audits a synthesis result: evidence completeness per issue,
// screenshot citation integrity, and stage failures. It makes no external
// calls; the same result always yields the same report.
package qa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
	"github.com/belivan/MaxantAgency-sub013/internal/screenshot"
)

// ErrNilResult is returned by ValidateReportQuality for a nil result.
var ErrNilResult = errors.New("qa: nil synthesis result")

const (
	minOverviewLen     = 80
	minKeyFindings     = 3
	minPriorityActions = 3
)

// Score deductions.
const (
	deductPoorIssue       = 5
	deductAcceptableIssue = 2
	deductInvalidRef      = 3
	deductStageError      = 10
)

var summaryDeductions = map[schema.SummaryQuality]int{
	schema.SummaryMissing: 30,
	schema.SummaryInvalid: 25,
	schema.SummaryPoor:    15,
	schema.SummaryGood:    5,
}

// ValidateReportQuality builds the QA report for a synthesis result.
func ValidateReportQuality(res *schema.SynthesisResult) (*schema.QAReport, error) {
	if res == nil {
		return nil, ErrNilResult
	}
	rep := &schema.QAReport{
		IssueEvidence: make([]schema.IssueEvidence, 0, len(res.ConsolidatedIssues)),
	}

	var cited []string
	for _, iss := range res.ConsolidatedIssues {
		ev := ScoreIssueEvidence(iss)
		rep.IssueEvidence = append(rep.IssueEvidence, ev)
		switch ev.Quality {
		case schema.EvidenceExcellent:
			rep.Summary.ExcellentIssues++
		case schema.EvidenceGood:
			rep.Summary.GoodIssues++
		case schema.EvidenceAcceptable:
			rep.Summary.AcceptableIssues++
		default:
			rep.Summary.PoorIssues++
		}
		cited = append(cited, screenshot.ExtractIDs(iss.CitationText())...)
	}
	rep.IssueScreenshotReferences = screenshot.CheckIDs(dedupe(cited), res.ScreenshotReferences)
	rep.ExecutiveSummaryValidation = ValidateExecutiveSummary(res.ExecutiveSummary, res.ScreenshotReferences)

	sv := rep.ExecutiveSummaryValidation
	rep.Summary.TotalIssues = len(res.ConsolidatedIssues)
	rep.Summary.ScreenshotReferences = len(res.ScreenshotReferences)
	rep.Summary.InvalidScreenshotReferences = len(invalidReferences(rep))
	rep.Summary.SynthesisErrors = len(res.Errors)
	rep.Summary.CriticalErrors = len(sv.Errors) + len(res.Errors)

	rep.QualityScore = ComputeScore(sv.Quality, rep.Summary)
	rep.Status = DetermineTier(rep.QualityScore, rep.Summary.CriticalErrors)
	rep.Recommendations = recommendations(res, rep)
	return rep, nil
}

// ScoreIssueEvidence scores one issue 0–6, one point per populated field
// among title, description, sources, evidence, screenshotRefs, and
// affectedPages.
func ScoreIssueEvidence(iss schema.ConsolidatedIssue) schema.IssueEvidence {
	ev := schema.IssueEvidence{IssueID: iss.ID, Title: iss.Title}
	checks := []struct {
		field   string
		present bool
	}{
		{"title", strings.TrimSpace(iss.Title) != ""},
		{"description", strings.TrimSpace(iss.Description) != ""},
		{"sources", len(iss.Sources) > 0},
		{"evidence", len(iss.Evidence) > 0},
		{"screenshotRefs", len(iss.ScreenshotRefs) > 0},
		{"affectedPages", len(iss.AffectedPages) > 0},
	}
	for _, c := range checks {
		if c.present {
			ev.Score++
		} else {
			ev.Missing = append(ev.Missing, c.field)
		}
	}
	switch {
	case ev.Score >= 5:
		ev.Quality = schema.EvidenceExcellent
	case ev.Score == 4:
		ev.Quality = schema.EvidenceGood
	case ev.Score == 3:
		ev.Quality = schema.EvidenceAcceptable
	default:
		ev.Quality = schema.EvidencePoor
	}
	return ev
}

// ValidateExecutiveSummary checks required fields and screenshot citations.
// Quality: invalid with any error, poor with more than two warnings, good
// with any warning, otherwise excellent.
func ValidateExecutiveSummary(s *schema.ExecutiveSummary, refs []schema.ScreenshotReference) schema.SummaryValidation {
	v := schema.SummaryValidation{
		Errors:   []string{},
		Warnings: []string{},
	}
	if s == nil {
		v.Quality = schema.SummaryMissing
		v.Errors = append(v.Errors, "executive summary is missing")
		v.ScreenshotReferences = screenshot.CheckIDs(nil, refs)
		return v
	}
	v.Present = true

	overview := strings.TrimSpace(s.Overview)
	switch {
	case overview == "":
		v.Errors = append(v.Errors, "overview is missing")
	case len([]rune(overview)) < minOverviewLen:
		v.Warnings = append(v.Warnings, fmt.Sprintf("overview is shorter than %d characters", minOverviewLen))
	}
	switch n := len(s.KeyFindings); {
	case n == 0:
		v.Errors = append(v.Errors, "keyFindings is empty")
	case n < minKeyFindings:
		v.Warnings = append(v.Warnings, fmt.Sprintf("only %d key finding(s), expected at least %d", n, minKeyFindings))
	}
	switch n := len(s.PriorityActions); {
	case n == 0:
		v.Errors = append(v.Errors, "priorityActions is empty")
	case n < minPriorityActions:
		v.Warnings = append(v.Warnings, fmt.Sprintf("only %d priority action(s), expected at least %d", n, minPriorityActions))
	}
	if len(s.NextSteps) == 0 {
		v.Errors = append(v.Errors, "nextSteps is missing")
	}

	v.ScreenshotReferences = screenshot.ValidateReferences(s.CitationText(), refs)
	for _, id := range v.ScreenshotReferences.Missing {
		v.Errors = append(v.Errors, fmt.Sprintf("invalid screenshot reference %s", id))
	}
	if len(v.ScreenshotReferences.Found) == 0 {
		v.Warnings = append(v.Warnings, "executive summary cites no screenshots")
	}

	switch {
	case len(v.Errors) > 0:
		v.Quality = schema.SummaryInvalid
	case len(v.Warnings) > 2:
		v.Quality = schema.SummaryPoor
	case len(v.Warnings) > 0:
		v.Quality = schema.SummaryGood
	default:
		v.Quality = schema.SummaryExcellent
	}
	return v
}

// ComputeScore starts at 100 and subtracts the summary-quality deduction,
// 5 per poor issue, 2 per acceptable issue, 3 per invalid screenshot
// reference, and 10 per stage error. The result is floored at 0.
func ComputeScore(summary schema.SummaryQuality, s schema.QASummary) int {
	score := 100 - summaryDeductions[summary] -
		s.PoorIssues*deductPoorIssue -
		s.AcceptableIssues*deductAcceptableIssue -
		s.InvalidScreenshotReferences*deductInvalidRef -
		s.SynthesisErrors*deductStageError
	if score < 0 {
		return 0
	}
	return score
}

// DetermineTier returns FAIL for any critical error, otherwise buckets the
// score: below 70 WARN, below 90 PASS, else EXCELLENT.
func DetermineTier(score, criticalErrors int) schema.QualityTier {
	switch {
	case criticalErrors > 0:
		return schema.TierFail
	case score < 70:
		return schema.TierWarn
	case score < 90:
		return schema.TierPass
	default:
		return schema.TierExcellent
	}
}

// TierOrdinal orders tiers from best to worst: EXCELLENT=0, PASS=1, WARN=2,
// FAIL=3. Unknown tiers return -1. Used by --fail-on: fail when
// TierOrdinal(actual) >= TierOrdinal(threshold).
func TierOrdinal(t schema.QualityTier) int {
	switch t {
	case schema.TierExcellent:
		return 0
	case schema.TierPass:
		return 1
	case schema.TierWarn:
		return 2
	case schema.TierFail:
		return 3
	default:
		return -1
	}
}

func recommendations(res *schema.SynthesisResult, rep *schema.QAReport) []string {
	var out []string
	if n := len(res.Errors); n > 0 {
		stages := make([]string, 0, n)
		for _, e := range res.Errors {
			stages = append(stages, e.Stage)
		}
		out = append(out, fmt.Sprintf("Re-run synthesis: %d stage(s) failed (%s).", n, strings.Join(stages, ", ")))
	}
	if invalid := invalidReferences(rep); len(invalid) > 0 {
		out = append(out, fmt.Sprintf("Remove or correct %d invalid screenshot reference(s): %s.", len(invalid), strings.Join(invalid, ", ")))
	}
	if n := rep.Summary.PoorIssues; n > 0 {
		out = append(out, fmt.Sprintf("Add evidence to %d issue(s) with poor evidence quality.", n))
	}
	sv := rep.ExecutiveSummaryValidation
	if sv.Present && len(sv.ScreenshotReferences.Found) == 0 {
		out = append(out, "Cite screenshots (SS-n) in the executive summary.")
	}
	switch sv.Quality {
	case schema.SummaryMissing:
		out = append(out, "Generate the executive summary; the report has none.")
	case schema.SummaryInvalid, schema.SummaryPoor:
		out = append(out, fmt.Sprintf("Revise the executive summary (quality: %s).", sv.Quality))
	}
	if len(out) == 0 {
		out = append(out, "Report is ready to deliver.")
	}
	return out
}

// invalidReferences is the union of unknown IDs cited by the summary and by
// issues. An ID cited in both places counts once.
func invalidReferences(rep *schema.QAReport) []string {
	return dedupe(append(append([]string{}, rep.ExecutiveSummaryValidation.ScreenshotReferences.Missing...),
		rep.IssueScreenshotReferences.Missing...))
}

func dedupe(ids []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
