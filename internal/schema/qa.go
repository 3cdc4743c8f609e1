package schema

// QualityTier is the overall QA verdict.
type QualityTier string

const (
	TierFail      QualityTier = "FAIL"
	TierWarn      QualityTier = "WARN"
	TierPass      QualityTier = "PASS"
	TierExcellent QualityTier = "EXCELLENT"
)

// EvidenceQuality buckets a consolidated issue's evidence completeness.
type EvidenceQuality string

const (
	EvidenceExcellent  EvidenceQuality = "excellent"
	EvidenceGood       EvidenceQuality = "good"
	EvidenceAcceptable EvidenceQuality = "acceptable"
	EvidencePoor       EvidenceQuality = "poor"
)

// SummaryQuality buckets the executive summary.
type SummaryQuality string

const (
	SummaryMissing   SummaryQuality = "missing"
	SummaryInvalid   SummaryQuality = "invalid"
	SummaryPoor      SummaryQuality = "poor"
	SummaryGood      SummaryQuality = "good"
	SummaryExcellent SummaryQuality = "excellent"
)

// IssueEvidence is the evidence audit of one consolidated issue.
type IssueEvidence struct {
	IssueID string          `json:"issueId"`
	Title   string          `json:"title"`
	Score   int             `json:"score"`
	Quality EvidenceQuality `json:"quality"`
	Missing []string        `json:"missing,omitempty"`
}

// ReferenceCheck is the result of validating cited SS-n IDs.
type ReferenceCheck struct {
	Found   []string `json:"found"`
	Valid   []string `json:"valid"`
	Missing []string `json:"missing"`
	IsValid bool     `json:"isValid"`
}

// SummaryValidation is the audit of the executive summary.
type SummaryValidation struct {
	Present              bool           `json:"present"`
	Quality              SummaryQuality `json:"quality"`
	Errors               []string       `json:"errors"`
	Warnings             []string       `json:"warnings"`
	ScreenshotReferences ReferenceCheck `json:"screenshotReferences"`
}

// QASummary holds the headline counts of a QA run.
type QASummary struct {
	TotalIssues                 int `json:"totalIssues"`
	ExcellentIssues             int `json:"excellentIssues"`
	GoodIssues                  int `json:"goodIssues"`
	AcceptableIssues            int `json:"acceptableIssues"`
	PoorIssues                  int `json:"poorIssues"`
	ScreenshotReferences        int `json:"screenshotReferences"`
	InvalidScreenshotReferences int `json:"invalidScreenshotReferences"`
	SynthesisErrors             int `json:"synthesisErrors"`
	CriticalErrors              int `json:"criticalErrors"`
}

// QAReport is derived entirely from a SynthesisResult.
type QAReport struct {
	Status                     QualityTier       `json:"status"`
	QualityScore               int               `json:"qualityScore"`
	Summary                    QASummary         `json:"summary"`
	IssueEvidence              []IssueEvidence   `json:"issueEvidence"`
	IssueScreenshotReferences  ReferenceCheck    `json:"issueScreenshotReferences"`
	ExecutiveSummaryValidation SummaryValidation `json:"executiveSummaryValidation"`
	Recommendations            []string          `json:"recommendations"`
}
