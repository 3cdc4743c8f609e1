// Package grading computes letter grades for analyzed websites. Engine is
// the deterministic weighted scorer; Grader adds AI-comparative grading
// against a matched benchmark and falls back to Engine on any failure.
package grading

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/belivan/MaxantAgency-sub013/internal/config"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// ErrInvalidInput is returned when a provided score is not a number in [0, 100].
var ErrInvalidInput = errors.New("grading: invalid input")

// Engine is the deterministic grading engine. It holds no mutable state.
type Engine struct {
	cfg *config.GradingConfig
}

// NewEngine builds an Engine over validated grading tables.
func NewEngine(cfg *config.GradingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the grading tables the engine uses.
func (e *Engine) Config() *config.GradingConfig {
	return e.cfg
}

// CalculateGrade scores a site: weighted dimension sum, plus bonuses, plus
// penalties, clamped to [0, 100] and rounded to one decimal.
func (e *Engine) CalculateGrade(scores schema.DimensionScores, meta schema.GradeMetadata) (*schema.GradeResult, error) {
	if err := ValidateScores(scores); err != nil {
		return nil, err
	}
	weights, table := e.cfg.WeightsFor(meta.Industry)
	base := WeightedScore(e.withDefaults(scores, weights), weights)

	bonuses := e.bonuses(meta)
	penalties := e.penalties(meta)
	total := base
	for _, b := range bonuses {
		total += b.Points
	}
	for _, p := range penalties {
		total += p.Points
	}
	overall := round1(clamp(total, 0, 100))
	grade := e.cfg.LetterFor(overall)

	return &schema.GradeResult{
		Letter:       grade.Letter,
		OverallScore: overall,
		Label:        grade.Label,
		Breakdown: schema.Breakdown{
			BaseScore: base,
			Bonuses:   bonuses,
			Penalties: penalties,
		},
		WeightsUsed: copyWeights(weights),
		WeightTable: table,
	}, nil
}

// ValidateScores rejects any provided score that is NaN, infinite, or outside
// [0, 100].
func ValidateScores(scores schema.DimensionScores) error {
	dims := make([]string, 0, len(scores))
	for d := range scores {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	for _, d := range dims {
		v := scores[d]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return fmt.Errorf("%w: %s score %v is outside [0, 100]", ErrInvalidInput, d, v)
		}
	}
	return nil
}

// WeightedScore is the dot product of scores and weights over the weighted
// dimensions, summed in sorted dimension order so results are reproducible.
// Dimensions absent from scores contribute zero.
func WeightedScore(scores schema.DimensionScores, weights map[string]float64) float64 {
	dims := make([]string, 0, len(weights))
	for d := range weights {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	var sum float64
	for _, d := range dims {
		sum += scores[d] * weights[d]
	}
	return sum
}

// withDefaults fills weighted dimensions missing from scores with the
// configured default. The caller's map is not modified.
func (e *Engine) withDefaults(scores schema.DimensionScores, weights map[string]float64) schema.DimensionScores {
	out := make(schema.DimensionScores, len(weights))
	for d := range weights {
		if v, ok := scores[d]; ok {
			out[d] = v
		} else {
			out[d] = e.cfg.DefaultScores[d]
		}
	}
	return out
}

func (e *Engine) bonuses(meta schema.GradeMetadata) []schema.Adjustment {
	out := []schema.Adjustment{}
	qw := e.cfg.Bonuses.QuickWin
	if qw.Points > 0 && meta.QuickWinCount >= qw.Threshold {
		out = append(out, schema.Adjustment{
			Name:   "quickWinBonus",
			Points: qw.Points,
			Reason: fmt.Sprintf("%d quick wins available (threshold %d)", meta.QuickWinCount, qw.Threshold),
		})
	}
	if opt := e.cfg.Bonuses.IndustryOptimization; opt.Points > 0 && meta.IndustryOptimized {
		out = append(out, schema.Adjustment{
			Name:   "industryOptimization",
			Points: opt.Points,
			Reason: "site is optimized for its industry",
		})
	}
	return out
}

func (e *Engine) penalties(meta schema.GradeMetadata) []schema.Adjustment {
	out := []schema.Adjustment{}
	p := e.cfg.Penalties
	if isFalse(meta.SiteAccessible) {
		out = append(out, schema.Adjustment{Name: "brokenSite", Points: p.BrokenSite, Reason: "site was not accessible"})
	}
	if isFalse(meta.IsMobileFriendly) {
		out = append(out, schema.Adjustment{Name: "mobileFailure", Points: p.MobileFailure, Reason: "site is not mobile friendly"})
	}
	if isFalse(meta.HasHTTPS) {
		out = append(out, schema.Adjustment{Name: "securityIssues", Points: p.SecurityIssues, Reason: "site does not use HTTPS"})
	}
	return out
}

func isFalse(b *bool) bool {
	return b != nil && !*b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
