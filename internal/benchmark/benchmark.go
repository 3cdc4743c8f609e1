// Package benchmark defines the benchmark-matcher port used by AI-comparative
// grading and a YAML-backed catalog implementation of it.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// ErrNoBenchmark describes a lookup that completed without a usable peer.
var ErrNoBenchmark = errors.New("benchmark: no benchmark found")

// Criteria describes the prospect a benchmark is matched against.
type Criteria struct {
	CompanyName          string
	Industry             string
	URL                  string
	City                 string
	State                string
	BusinessIntelligence map[string]any
	ICPCriteria          map[string]any
}

// Match is the outcome of one lookup. Success is false when nothing matched.
type Match struct {
	Success       bool
	Benchmark     *schema.Benchmark
	MatchMetadata *schema.MatchMetadata
}

// Matcher finds the best peer benchmark for a prospect.
type Matcher interface {
	FindBestBenchmark(ctx context.Context, c Criteria) (*Match, error)
}

// Catalog is an in-memory list of benchmarks.
type Catalog struct {
	Benchmarks []schema.Benchmark `yaml:"benchmarks"`
}

// LoadCatalog reads a YAML file with a top-level "benchmarks" list.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("benchmark: read %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("benchmark: parse %s: %w", path, err)
	}
	return &c, nil
}

// FindBestBenchmark ranks same-industry peers: same city and state first, then
// same state, then by rating weighted by review volume. The prospect itself is
// never its own benchmark.
func (c *Catalog) FindBestBenchmark(_ context.Context, cr Criteria) (*Match, error) {
	type scored struct {
		b       schema.Benchmark
		score   float64
		reasons []string
	}
	var candidates []scored
	for _, b := range c.Benchmarks {
		if !strings.EqualFold(b.Industry, cr.Industry) {
			continue
		}
		if cr.CompanyName != "" && strings.EqualFold(b.CompanyName, cr.CompanyName) {
			continue
		}
		s := scored{b: b, score: 50, reasons: []string{"same industry"}}
		if cr.State != "" && strings.EqualFold(b.State, cr.State) {
			s.score += 20
			s.reasons = append(s.reasons, "same state")
			if cr.City != "" && strings.EqualFold(b.City, cr.City) {
				s.score += 20
				s.reasons = append(s.reasons, "same city")
			}
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return &Match{Success: false}, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return reputation(candidates[i].b) > reputation(candidates[j].b)
	})
	best := candidates[0]
	return &Match{
		Success:   true,
		Benchmark: &best.b,
		MatchMetadata: &schema.MatchMetadata{
			MatchScore:   best.score,
			MatchReasons: best.reasons,
			Candidates:   len(candidates),
		},
	}, nil
}

func reputation(b schema.Benchmark) float64 {
	return b.Rating * float64(b.ReviewCount+1)
}
