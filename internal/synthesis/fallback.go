package synthesis

import (
	"fmt"

	"github.com/belivan/MaxantAgency-sub013/internal/issues"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
	"github.com/belivan/MaxantAgency-sub013/internal/screenshot"
)

// FallbackIssues formats raw issues without a model: the first perModule
// issues of each module in canonical module order, one consolidated record
// each, with IDs FALLBACK-1, FALLBACK-2, ... An issue cites the screenshots
// of its affected pages, limited to its module's viewport when the module is
// viewport-specific.
func FallbackIssues(byModule map[string][]schema.RawIssue, refs []schema.ScreenshotReference, perModule int) []schema.ConsolidatedIssue {
	pageIndex := make(map[string]map[string][]string)
	flat := issues.Flatten(byModule, perModule)
	out := make([]schema.ConsolidatedIssue, 0, len(flat))
	for i, s := range flat {
		iss := s.Issue
		byPage, ok := pageIndex[s.Module]
		if !ok {
			byPage = screenshot.ByPage(screenshot.ForModule(refs, s.Module))
			pageIndex[s.Module] = byPage
		}
		out = append(out, schema.ConsolidatedIssue{
			ID:             fmt.Sprintf("FALLBACK-%d", i+1),
			Title:          iss.Title,
			Description:    iss.Description,
			Severity:       iss.Severity,
			Priority:       iss.Priority,
			Category:       iss.Category,
			Sources:        []string{s.Module},
			Evidence:       append([]string{}, iss.Evidence...),
			ScreenshotRefs: refsForPages(byPage, iss.AffectedPages),
			AffectedPages:  append([]string{}, iss.AffectedPages...),
			Recommendation: iss.Recommendation,
		})
	}
	return out
}

func refsForPages(byPage map[string][]string, pages []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, pg := range pages {
		for _, id := range byPage[screenshot.NormalizeURL(pg)] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
