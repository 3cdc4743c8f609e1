// Package schema defines the canonical data types shared by grading,
// synthesis, and quality validation.
package schema

import "encoding/json"

// Dimension names produced by the upstream analyzers.
const (
	DimensionDesign        = "design"
	DimensionSEO           = "seo"
	DimensionContent       = "content"
	DimensionSocial        = "social"
	DimensionPerformance   = "performance"
	DimensionAccessibility = "accessibility"
)

// DimensionScores maps a dimension name to a score in [0, 100].
type DimensionScores map[string]float64

// GradeMetadata carries the site signals that trigger bonuses and penalties.
// Nil booleans mean the signal is unknown; only an explicit false penalizes.
type GradeMetadata struct {
	QuickWinCount     int    `json:"quickWinCount"`
	IsMobileFriendly  *bool  `json:"isMobileFriendly,omitempty"`
	HasHTTPS          *bool  `json:"hasHTTPS,omitempty"`
	SiteAccessible    *bool  `json:"siteAccessible,omitempty"`
	Industry          string `json:"industry,omitempty"`
	IndustryOptimized bool   `json:"industryOptimized,omitempty"`
}

// Adjustment is a single bonus or penalty applied on top of the weighted score.
type Adjustment struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Reason string  `json:"reason"`
}

// Breakdown explains how the overall score was reached.
type Breakdown struct {
	BaseScore float64      `json:"baseScore"`
	Bonuses   []Adjustment `json:"bonuses"`
	Penalties []Adjustment `json:"penalties"`
}

// GradeResult is the output of one deterministic grading call.
type GradeResult struct {
	Letter       string             `json:"letter"`
	OverallScore float64            `json:"overallScore"`
	Label        string             `json:"label"`
	Breakdown    Breakdown          `json:"breakdown"`
	WeightsUsed  map[string]float64 `json:"weightsUsed"`
	WeightTable  string             `json:"weightTable"`
}

// Benchmark is a peer company's analysis profile used as a comparison baseline.
type Benchmark struct {
	CompanyName  string          `json:"company_name" yaml:"company_name"`
	Industry     string          `json:"industry" yaml:"industry"`
	URL          string          `json:"url,omitempty" yaml:"url"`
	City         string          `json:"city,omitempty" yaml:"city"`
	State        string          `json:"state,omitempty" yaml:"state"`
	Scores       DimensionScores `json:"scores" yaml:"scores"`
	Tier         string          `json:"tier" yaml:"tier"`
	Rating       float64         `json:"rating" yaml:"rating"`
	ReviewCount  int             `json:"review_count" yaml:"review_count"`
	OverallScore float64         `json:"overall_score" yaml:"overall_score"`
	OverallGrade string          `json:"overall_grade" yaml:"overall_grade"`
}

// MatchMetadata describes why a benchmark was selected.
type MatchMetadata struct {
	MatchScore   float64  `json:"match_score"`
	MatchReasons []string `json:"match_reasons,omitempty"`
	Candidates   int      `json:"candidates"`
}

// AnalysisResult is the full upstream analysis of one prospect's website.
type AnalysisResult struct {
	CompanyName          string                `json:"company_name"`
	Industry             string                `json:"industry"`
	URL                  string                `json:"url"`
	City                 string                `json:"city,omitempty"`
	State                string                `json:"state,omitempty"`
	Scores               DimensionScores       `json:"scores"`
	Issues               map[string][]RawIssue `json:"issues,omitempty"`
	QuickWins            []string              `json:"quick_wins,omitempty"`
	IsMobileFriendly     *bool                 `json:"is_mobile_friendly,omitempty"`
	HasHTTPS             *bool                 `json:"has_https,omitempty"`
	SiteAccessible       *bool                 `json:"site_accessible,omitempty"`
	BusinessIntelligence map[string]any        `json:"business_intelligence,omitempty"`
	ICPCriteria          map[string]any        `json:"icp_criteria,omitempty"`
}

// BusinessMetadata carries the business signals used by AI-comparative grading.
type BusinessMetadata struct {
	HasActiveAds      bool `json:"has_active_ads"`
	IsEstablished     bool `json:"is_established"`
	IndustryOptimized bool `json:"industry_optimized,omitempty"`
}

// GradingMethod tags the provenance of an AIGradeResult.
type GradingMethod string

const (
	GradingAIComparative  GradingMethod = "ai-comparative"
	GradingManualFallback GradingMethod = "manual-fallback"
)

// PriorityTier ranks a lead for outreach.
type PriorityTier string

const (
	TierHot  PriorityTier = "hot"
	TierWarm PriorityTier = "warm"
	TierCold PriorityTier = "cold"
)

// BudgetLikelihood estimates whether a prospect can pay for the work.
type BudgetLikelihood string

const (
	BudgetHigh   BudgetLikelihood = "high"
	BudgetMedium BudgetLikelihood = "medium"
	BudgetLow    BudgetLikelihood = "low"
)

// ComparisonSummary is the model's account of target vs. benchmark.
type ComparisonSummary struct {
	Gap            float64  `json:"gap"`
	GapAssessment  string   `json:"gap_assessment"`
	StrongestAreas []string `json:"strongest_areas"`
	WeakestAreas   []string `json:"weakest_areas"`
	QuickWins      []string `json:"quick_wins"`
}

// TokenUsage records model token consumption for one call.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// AIGradeResult is the output of AI-comparative grading or its fallback.
// GradingMethod is always set.
type AIGradeResult struct {
	GradingMethod        GradingMethod      `json:"grading_method"`
	OverallGrade         string             `json:"overall_grade"`
	OverallScore         float64            `json:"overall_score"`
	LeadScore            *float64           `json:"lead_score,omitempty"`
	PriorityTier         PriorityTier       `json:"priority_tier"`
	BudgetLikelihood     BudgetLikelihood   `json:"budget_likelihood"`
	DimensionWeightsUsed map[string]float64 `json:"dimension_weights_used,omitempty"`
	ComparisonSummary    *ComparisonSummary `json:"comparison_summary,omitempty"`
	BusinessContext      json.RawMessage    `json:"business_context,omitempty"`
	SalesInsights        json.RawMessage    `json:"sales_insights,omitempty"`
	GradingRationale     string             `json:"grading_rationale,omitempty"`
	Benchmark            *Benchmark         `json:"benchmark,omitempty"`
	MatchMetadata        *MatchMetadata     `json:"match_metadata,omitempty"`
	// Derivations records, per derived field, which strategy produced the value.
	Derivations    map[string]string `json:"derivations,omitempty"`
	Model          string            `json:"model,omitempty"`
	Usage          *TokenUsage       `json:"usage,omitempty"`
	Fallback       *GradeResult      `json:"fallback,omitempty"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
}
