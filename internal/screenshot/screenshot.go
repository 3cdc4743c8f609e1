// Package screenshot assigns stable SS-n identifiers to crawled-page
// screenshots and validates SS-n citations against them.
//
// IDs are assigned in page order, desktop before mobile, so the same crawl
// always yields the same numbering. Build the list once per run and share it.
package screenshot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// BuildReferences enumerates screenshots in crawl order. A page contributes
// zero, one, or two references depending on which paths it carries.
func BuildReferences(pages []schema.CrawledPage) []schema.ScreenshotReference {
	refs := []schema.ScreenshotReference{}
	add := func(p schema.CrawledPage, vp schema.Viewport, path string) {
		refs = append(refs, schema.ScreenshotReference{
			ID:       fmt.Sprintf("SS-%d", len(refs)+1),
			PageURL:  p.URL,
			Viewport: vp,
			Path:     path,
			Modules:  modulesFor(p.AnalyzedBy, vp),
		})
	}
	for _, p := range pages {
		if p.ScreenshotPaths == nil {
			continue
		}
		if p.ScreenshotPaths.Desktop != "" {
			add(p, schema.ViewportDesktop, p.ScreenshotPaths.Desktop)
		}
		if p.ScreenshotPaths.Mobile != "" {
			add(p, schema.ViewportMobile, p.ScreenshotPaths.Mobile)
		}
	}
	return refs
}

// modulesFor copies the modules that apply to a viewport: modules named for
// the other viewport are dropped.
func modulesFor(analyzedBy []string, vp schema.Viewport) []string {
	out := make([]string, 0, len(analyzedBy))
	for _, m := range analyzedBy {
		if mv, ok := ViewportOf(m); ok && mv != vp {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ViewportOf reports the viewport a module is named for, as in
// "mobile-visual". Modules such as "seo" apply to every viewport.
func ViewportOf(module string) (schema.Viewport, bool) {
	m := strings.ToLower(module)
	for _, vp := range []schema.Viewport{schema.ViewportDesktop, schema.ViewportMobile} {
		if strings.HasPrefix(m, string(vp)) {
			return vp, true
		}
	}
	return "", false
}

// ForModule keeps the references a module's findings can cite: those of the
// module's own viewport, or all of them for viewport-neutral modules.
func ForModule(refs []schema.ScreenshotReference, module string) []schema.ScreenshotReference {
	vp, ok := ViewportOf(module)
	if !ok {
		return refs
	}
	out := make([]schema.ScreenshotReference, 0, len(refs))
	for _, r := range refs {
		if r.Viewport == vp {
			out = append(out, r)
		}
	}
	return out
}

// idRe is the citation grammar: word boundary, "SS-" in any case, one or
// more digits, word boundary.
var idRe = regexp.MustCompile(`(?i)\bSS-(\d+)\b`)

// ExtractIDs returns every SS-n token in text in canonical form (see
// NormalizeID), de-duplicated in first-seen order.
func ExtractIDs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range idRe.FindAllStringSubmatch(text, -1) {
		id := NormalizeID("SS-" + m[1])
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// NormalizeID upper-cases an SS-n identifier and drops leading zeros from
// its number, so "ss-01" and "SS-1" name the same screenshot.
func NormalizeID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	digits, ok := strings.CutPrefix(id, "SS-")
	if !ok || digits == "" {
		return id
	}
	if trimmed := strings.TrimLeft(digits, "0"); trimmed != "" {
		return "SS-" + trimmed
	}
	return "SS-0"
}

// IDSet returns the set of reference IDs.
func IDSet(refs []schema.ScreenshotReference) map[string]bool {
	set := make(map[string]bool, len(refs))
	for _, r := range refs {
		set[NormalizeID(r.ID)] = true
	}
	return set
}

// ValidateReferences checks every SS-n token cited in text against refs.
func ValidateReferences(text string, refs []schema.ScreenshotReference) schema.ReferenceCheck {
	return CheckIDs(ExtractIDs(text), refs)
}

// CheckIDs splits already-extracted IDs into valid and missing.
func CheckIDs(found []string, refs []schema.ScreenshotReference) schema.ReferenceCheck {
	known := IDSet(refs)
	check := schema.ReferenceCheck{
		Found:   []string{},
		Valid:   []string{},
		Missing: []string{},
	}
	for _, id := range found {
		check.Found = append(check.Found, id)
		if known[id] {
			check.Valid = append(check.Valid, id)
		} else {
			check.Missing = append(check.Missing, id)
		}
	}
	check.IsValid = len(check.Missing) == 0
	return check
}

// ByPage indexes reference IDs by page URL, preserving ID order. Trailing
// slashes are ignored when matching URLs.
func ByPage(refs []schema.ScreenshotReference) map[string][]string {
	out := make(map[string][]string)
	for _, r := range refs {
		key := NormalizeURL(r.PageURL)
		out[key] = append(out[key], r.ID)
	}
	return out
}

// NormalizeURL lower-cases and trims a trailing slash for page matching.
func NormalizeURL(u string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(u)), "/")
}
