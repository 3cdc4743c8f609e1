package schema

import (
	"encoding/json"
	"strings"
)

// Severity of a raw or consolidated issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// RawIssue is one finding reported by a single analyzer module.
type RawIssue struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Severity       Severity `json:"severity,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Category       string   `json:"category,omitempty"`
	Source         string   `json:"source,omitempty"`
	SourceType     string   `json:"source_type,omitempty"`
	Evidence       []string `json:"evidence,omitempty"`
	AffectedPages  []string `json:"affectedPages,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// ConsolidatedIssue merges raw issues reported by one or more modules.
type ConsolidatedIssue struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Severity       Severity `json:"severity,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Category       string   `json:"category,omitempty"`
	Sources        []string `json:"sources"`
	Evidence       []string `json:"evidence"`
	ScreenshotRefs []string `json:"screenshotRefs"`
	AffectedPages  []string `json:"affectedPages"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// CitationText returns every free-text field that may cite screenshot IDs.
func (c ConsolidatedIssue) CitationText() string {
	parts := []string{c.Title, c.Description, c.Recommendation}
	parts = append(parts, c.Evidence...)
	parts = append(parts, c.ScreenshotRefs...)
	return strings.Join(parts, "\n")
}

// MergeEntry records which raw issues were folded into a consolidated issue.
type MergeEntry struct {
	ConsolidatedID string   `json:"consolidatedId"`
	MergedIssues   []string `json:"mergedIssues"`
	Reason         string   `json:"reason,omitempty"`
}

// DedupStatistics summarizes the deduplication stage.
type DedupStatistics struct {
	OriginalCount     int     `json:"originalCount"`
	ConsolidatedCount int     `json:"consolidatedCount"`
	ReductionPercent  float64 `json:"reductionPercent"`
}

// ScreenshotPaths holds the captured screenshots for one page.
type ScreenshotPaths struct {
	Desktop string `json:"desktop,omitempty"`
	Mobile  string `json:"mobile,omitempty"`
}

// CrawledPage is one page from the upstream crawl, in crawl order.
type CrawledPage struct {
	URL             string           `json:"url"`
	Title           string           `json:"title,omitempty"`
	ScreenshotPaths *ScreenshotPaths `json:"screenshotPaths,omitempty"`
	AnalyzedBy      []string         `json:"analyzedBy,omitempty"`
}

// Viewport of a screenshot.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// ScreenshotReference is a stable SS-n identifier for one page/viewport screenshot.
type ScreenshotReference struct {
	ID       string   `json:"id"`
	PageURL  string   `json:"pageUrl"`
	Viewport Viewport `json:"viewport"`
	Path     string   `json:"path"`
	Modules  []string `json:"modules"`
}

// TextList decodes from either a JSON string or an array of strings.
type TextList []string

func (t *TextList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			*t = nil
		} else {
			*t = TextList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

// Finding is one key finding in an executive summary.
type Finding struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// UnmarshalJSON accepts a bare string as a title-only finding.
func (f *Finding) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = Finding{Title: s}
		return nil
	}
	type plain Finding
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = Finding(p)
	return nil
}

// Action is one recommended priority action in an executive summary.
type Action struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Timeline    string   `json:"timeline,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// UnmarshalJSON accepts a bare string as a title-only action.
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Action{Title: s}
		return nil
	}
	type plain Action
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*a = Action(p)
	return nil
}

// ExecutiveSummary is the reader-facing synopsis produced by the summary stage.
type ExecutiveSummary struct {
	Overview        string    `json:"overview"`
	KeyFindings     []Finding `json:"keyFindings"`
	PriorityActions []Action  `json:"priorityActions"`
	NextSteps       TextList  `json:"nextSteps"`
}

// CitationText concatenates overview, findings, actions, and next steps.
func (s *ExecutiveSummary) CitationText() string {
	if s == nil {
		return ""
	}
	parts := []string{s.Overview}
	for _, f := range s.KeyFindings {
		parts = append(parts, f.Title, f.Description, f.Impact)
		parts = append(parts, f.Evidence...)
	}
	for _, a := range s.PriorityActions {
		parts = append(parts, a.Title, a.Description, a.Timeline, a.Impact)
		parts = append(parts, a.Evidence...)
	}
	parts = append(parts, s.NextSteps...)
	return strings.Join(parts, "\n")
}

// RunStatus is the state of one synthesis run.
type RunStatus string

const (
	RunPending  RunStatus = "PENDING"
	RunRunning  RunStatus = "RUNNING"
	RunPartial  RunStatus = "PARTIAL"
	RunComplete RunStatus = "COMPLETE"
)

// Synthesis stage names.
const (
	StageDeduplication    = "issue-deduplication"
	StageExecutiveSummary = "executive-summary"
)

// StageStatus is the outcome of one synthesis stage.
type StageStatus string

const (
	StageSuccess  StageStatus = "success"
	StageFallback StageStatus = "fallback"
	StageFailed   StageStatus = "failed"
)

// StageError records a failed synthesis stage.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (e StageError) Error() string {
	return e.Stage + ": " + e.Message
}

// StageInfo describes how one stage ran.
type StageInfo struct {
	Status     StageStatus `json:"status"`
	Model      string      `json:"model,omitempty"`
	DurationMs int64       `json:"durationMs"`
	Usage      *TokenUsage `json:"usage,omitempty"`
}

// StageMetadata holds per-stage run information.
type StageMetadata struct {
	Deduplication    StageInfo `json:"deduplication"`
	ExecutiveSummary StageInfo `json:"executiveSummary"`
}

// SynthesisResult is the aggregate output of one synthesis run.
type SynthesisResult struct {
	RunID                string                `json:"runId"`
	Status               RunStatus             `json:"status"`
	CompanyName          string                `json:"companyName,omitempty"`
	ConsolidatedIssues   []ConsolidatedIssue   `json:"consolidatedIssues"`
	MergeLog             []MergeEntry          `json:"mergeLog,omitempty"`
	Statistics           *DedupStatistics      `json:"statistics,omitempty"`
	ExecutiveSummary     *ExecutiveSummary     `json:"executiveSummary"`
	SummaryMetadata      json.RawMessage       `json:"summaryMetadata,omitempty"`
	ScreenshotReferences []ScreenshotReference `json:"screenshotReferences"`
	StageMetadata        StageMetadata         `json:"stageMetadata"`
	Errors               []StageError          `json:"errors"`
}
