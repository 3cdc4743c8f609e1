package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration load or validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// weightSumTolerance bounds the float error allowed when weights are summed.
const weightSumTolerance = 1e-6

// Bonus awards points when its condition holds.
type Bonus struct {
	Points    float64 `yaml:"points"`
	Threshold int     `yaml:"threshold,omitempty"`
}

// Penalties are additive and expressed as non-positive points.
type Penalties struct {
	BrokenSite     float64 `yaml:"brokenSite"`
	MobileFailure  float64 `yaml:"mobileFailure"`
	SecurityIssues float64 `yaml:"securityIssues"`
}

// Bonuses are additive and expressed as non-negative points.
type Bonuses struct {
	QuickWin             Bonus `yaml:"quickWinBonus"`
	IndustryOptimization Bonus `yaml:"industryOptimization"`
}

// GradeRange maps a minimum score to a letter.
type GradeRange struct {
	Letter string  `yaml:"letter"`
	Min    float64 `yaml:"min"`
	Label  string  `yaml:"label"`
}

// GradingConfig is the immutable grading table set. Build it once with
// DefaultGrading or LoadGrading and share the pointer.
type GradingConfig struct {
	Weights         map[string]float64            `yaml:"weights"`
	IndustryWeights map[string]map[string]float64 `yaml:"industryWeights"`
	DefaultScores   map[string]float64            `yaml:"defaultScores"`
	Bonuses         Bonuses                       `yaml:"bonuses"`
	Penalties       Penalties                     `yaml:"penalties"`
	Scale           []GradeRange                  `yaml:"scale"`
}

// DefaultGrading returns the built-in grading tables.
func DefaultGrading() *GradingConfig {
	cfg := &GradingConfig{
		Weights: map[string]float64{
			"design": 0.30, "seo": 0.30, "content": 0.20, "social": 0.20,
		},
		IndustryWeights: map[string]map[string]float64{
			"restaurant":    {"design": 0.35, "seo": 0.25, "content": 0.15, "social": 0.25},
			"legal":         {"design": 0.25, "seo": 0.35, "content": 0.30, "social": 0.10},
			"healthcare":    {"design": 0.25, "seo": 0.35, "content": 0.25, "social": 0.15},
			"retail":        {"design": 0.35, "seo": 0.25, "content": 0.15, "social": 0.25},
			"home-services": {"design": 0.25, "seo": 0.40, "content": 0.20, "social": 0.15},
		},
		DefaultScores: map[string]float64{
			"design": 50, "seo": 50, "content": 50, "social": 50,
		},
		Bonuses: Bonuses{
			QuickWin:             Bonus{Points: 5, Threshold: 3},
			IndustryOptimization: Bonus{Points: 3},
		},
		Penalties: Penalties{
			BrokenSite:     -20,
			MobileFailure:  -15,
			SecurityIssues: -10,
		},
		Scale: []GradeRange{
			{Letter: "A", Min: 85, Label: "Excellent"},
			{Letter: "B", Min: 70, Label: "Good"},
			{Letter: "C", Min: 55, Label: "Fair"},
			{Letter: "D", Min: 30, Label: "Poor"},
			{Letter: "F", Min: 0, Label: "Failing"},
		},
	}
	return cfg
}

// LoadGrading reads a YAML grading file. Sections absent from the file keep
// their built-in defaults. The merged result is validated before it is returned.
func LoadGrading(path string) (*GradingConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}
	return ParseGrading(raw)
}

// ParseGrading decodes YAML grading tables over the defaults and validates them.
func ParseGrading(raw []byte) (*GradingConfig, error) {
	var fileCfg GradingConfig
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return nil, fmt.Errorf("%w: parse grading: %v", ErrInvalidConfig, err)
	}
	cfg := mergeGrading(DefaultGrading(), fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeGrading(base *GradingConfig, override GradingConfig) *GradingConfig {
	if len(override.Weights) > 0 {
		base.Weights = override.Weights
	}
	if override.IndustryWeights != nil {
		base.IndustryWeights = override.IndustryWeights
	}
	if len(override.DefaultScores) > 0 {
		base.DefaultScores = override.DefaultScores
	}
	if override.Bonuses != (Bonuses{}) {
		base.Bonuses = override.Bonuses
	}
	if override.Penalties != (Penalties{}) {
		base.Penalties = override.Penalties
	}
	if len(override.Scale) > 0 {
		base.Scale = override.Scale
	}
	return base
}

// Validate checks weight sums, sign conventions, and the grade scale, and
// sorts the scale by descending minimum.
func (c *GradingConfig) Validate() error {
	if err := validateWeights("weights", c.Weights); err != nil {
		return err
	}
	for industry, w := range c.IndustryWeights {
		if err := validateWeights("industryWeights."+industry, w); err != nil {
			return err
		}
	}
	for dim, s := range c.DefaultScores {
		if math.IsNaN(s) || s < 0 || s > 100 {
			return fmt.Errorf("%w: defaultScores.%s = %v is outside [0, 100]", ErrInvalidConfig, dim, s)
		}
	}
	if c.Bonuses.QuickWin.Points < 0 || c.Bonuses.IndustryOptimization.Points < 0 {
		return fmt.Errorf("%w: bonus points must be non-negative", ErrInvalidConfig)
	}
	if c.Bonuses.QuickWin.Threshold < 0 {
		return fmt.Errorf("%w: quickWinBonus.threshold must be non-negative", ErrInvalidConfig)
	}
	p := c.Penalties
	if p.BrokenSite > 0 || p.MobileFailure > 0 || p.SecurityIssues > 0 {
		return fmt.Errorf("%w: penalty points must be zero or negative", ErrInvalidConfig)
	}
	if len(c.Scale) == 0 {
		return fmt.Errorf("%w: grade scale is empty", ErrInvalidConfig)
	}
	sort.SliceStable(c.Scale, func(i, j int) bool { return c.Scale[i].Min > c.Scale[j].Min })
	if floor := c.Scale[len(c.Scale)-1]; floor.Min > 0 {
		return fmt.Errorf("%w: grade scale has no 0 floor (lowest min is %v)", ErrInvalidConfig, floor.Min)
	}
	for i, r := range c.Scale {
		if r.Letter == "" {
			return fmt.Errorf("%w: scale[%d] has no letter", ErrInvalidConfig, i)
		}
	}
	return nil
}

func validateWeights(name string, w map[string]float64) error {
	if len(w) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, name)
	}
	var sum float64
	for dim, v := range w {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: %s.%s = %v must be a non-negative number", ErrInvalidConfig, name, dim, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: %s sum to %.4f, want 1.0", ErrInvalidConfig, name, sum)
	}
	return nil
}

// WeightsFor returns the weight table for an industry and its name. Industry
// matching is case-insensitive; spaces and underscores match hyphens.
func (c *GradingConfig) WeightsFor(industry string) (map[string]float64, string) {
	key := normalizeIndustry(industry)
	if key != "" {
		for name, w := range c.IndustryWeights {
			if normalizeIndustry(name) == key {
				return w, name
			}
		}
	}
	return c.Weights, "default"
}

func normalizeIndustry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}

// LetterFor returns the first scale range whose minimum is at or below score.
// It defaults to F when no range matches, which a validated scale never allows.
func (c *GradingConfig) LetterFor(score float64) GradeRange {
	for _, r := range c.Scale {
		if r.Min <= score {
			return r
		}
	}
	return GradeRange{Letter: "F", Min: 0, Label: "Failing"}
}
