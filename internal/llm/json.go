package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON object can be found in a
// model response.
var ErrNoJSON = errors.New("llm: no JSON object in response")

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line (no closing fence required).
// Used to strip orphaned opening fences from truncated responses.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// embeddedFenceRe finds a fenced block anywhere in surrounding prose.
var embeddedFenceRe = regexp.MustCompile("(?s)(?:`{3}|~{3})[a-zA-Z]*[ \\t]*\\n(.*?)(?:`{3}|~{3})")

// invalidJSONEscapeRe matches a backslash followed by any character that is not
// a valid JSON string escape character ("\/bfnrtu). Models sometimes emit regex
// patterns (e.g. \d+) unescaped inside JSON strings.
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

// ParseJSONResponse extracts the JSON object from a model response and
// decodes it into v. It tolerates markdown fences, prose before or after the
// object, truncated opening fences, and invalid backslash escapes.
func ParseJSONResponse(content string, v any) error {
	for _, candidate := range jsonCandidates(content) {
		for _, c := range []string{candidate, fixInvalidJSONEscapes(candidate)} {
			if !json.Valid([]byte(c)) {
				continue
			}
			if err := json.Unmarshal([]byte(c), v); err != nil {
				return fmt.Errorf("llm: decode response: %w", err)
			}
			return nil
		}
	}
	return ErrNoJSON
}

// jsonCandidates lists substrings of content that may hold the JSON payload,
// most specific first.
func jsonCandidates(content string) []string {
	s := strings.TrimSpace(content)
	if s == "" {
		return nil
	}
	candidates := []string{stripMarkdownFences(s)}
	for _, m := range embeddedFenceRe.FindAllStringSubmatch(s, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if obj := outermostObject(s); obj != "" {
		candidates = append(candidates, obj)
	}
	return candidates
}

// stripMarkdownFences removes leading/trailing markdown code fences that models
// sometimes wrap around JSON output (e.g., "```json\n...\n```").
// If only an opening fence is present, the opening line is stripped.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// outermostObject returns the text from the first '{' to the last '}'.
func outermostObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// fixInvalidJSONEscapes replaces invalid JSON escape sequences in s with their
// correctly double-escaped equivalents.
func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}
