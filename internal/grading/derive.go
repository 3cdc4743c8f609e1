package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// strategy is one way of deriving a field. It reports false when it cannot
// decide, letting the next strategy try.
type strategy[T any] struct {
	name string
	fn   func() (T, bool)
}

// firstOf evaluates strategies in order and returns the first decided value
// with the name of the strategy that produced it. When none decides, it
// returns def under defName.
func firstOf[T any](def T, defName string, strategies ...strategy[T]) (T, string) {
	for _, s := range strategies {
		if v, ok := s.fn(); ok {
			return v, s.name
		}
	}
	return def, defName
}

// numberFrom accepts JSON numbers and numeric strings ("82", "82.5", "82%").
func numberFrom(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(n), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// scoreFrom is numberFrom restricted to [0, 100].
func scoreFrom(v any) (float64, bool) {
	f, ok := numberFrom(v)
	if !ok || f < 0 || f > 100 {
		return 0, false
	}
	return f, true
}

func stringFrom(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// stringsFrom flattens a model list. Object entries contribute their
// "area", "name", or "title" field.
func stringsFrom(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if s := stringFrom(v); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range list {
		switch it := item.(type) {
		case map[string]any:
			for _, key := range []string{"area", "name", "title"} {
				if s := stringFrom(it[key]); s != "" {
					out = append(out, s)
					break
				}
			}
		default:
			if s := stringFrom(it); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// weightsFrom normalizes the shapes models use for dimension_weights_used:
// {"design":0.3}, {"design":"30%"}, {"design":30}, or
// {"design":{"weight":0.3,...}}. Percentages are detected when the values
// sum above 1.5. The result is rescaled to sum to 1.
func weightsFrom(v any) (map[string]float64, bool) {
	raw, ok := v.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	out := make(map[string]float64, len(raw))
	var sum float64
	for dim, val := range raw {
		if obj, isObj := val.(map[string]any); isObj {
			val = obj["weight"]
		}
		w, ok := numberFrom(val)
		if !ok || w < 0 {
			return nil, false
		}
		out[strings.ToLower(dim)] = w
		sum += w
	}
	if sum <= 0 {
		return nil, false
	}
	for dim := range out {
		out[dim] /= sum
	}
	return out, true
}

// letterFrom accepts "B", "b", or "B+" and returns the bare letter.
func letterFrom(v any) (string, bool) {
	s := strings.ToUpper(stringFrom(v))
	if s == "" {
		return "", false
	}
	switch l := s[:1]; l {
	case "A", "B", "C", "D", "F":
		return l, true
	}
	return "", false
}

// TierFromLeadScore maps a lead score to a priority tier: ≥80 hot, ≥55 warm,
// otherwise cold.
func TierFromLeadScore(lead float64) schema.PriorityTier {
	switch {
	case lead >= 80:
		return schema.TierHot
	case lead >= 55:
		return schema.TierWarm
	default:
		return schema.TierCold
	}
}

// BudgetFromSignals maps the two business signals to a budget likelihood.
func BudgetFromSignals(meta schema.BusinessMetadata) schema.BudgetLikelihood {
	switch {
	case meta.HasActiveAds && meta.IsEstablished:
		return schema.BudgetHigh
	case meta.HasActiveAds || meta.IsEstablished:
		return schema.BudgetMedium
	default:
		return schema.BudgetLow
	}
}

func tierFrom(v any) (schema.PriorityTier, bool) {
	switch t := schema.PriorityTier(strings.ToLower(stringFrom(v))); t {
	case schema.TierHot, schema.TierWarm, schema.TierCold:
		return t, true
	}
	return "", false
}

func budgetFrom(v any) (schema.BudgetLikelihood, bool) {
	switch b := schema.BudgetLikelihood(strings.ToLower(stringFrom(v))); b {
	case schema.BudgetHigh, schema.BudgetMedium, schema.BudgetLow:
		return b, true
	}
	return "", false
}

// derivePriority resolves priority tier and budget likelihood. Model values
// win; otherwise the tier comes from the lead score and the budget from the
// business signals.
func derivePriority(modelTier, modelBudget any, lead *float64, meta schema.BusinessMetadata, d map[string]string) (schema.PriorityTier, schema.BudgetLikelihood) {
	tier, tierSrc := firstOf(schema.TierCold, "default",
		strategy[schema.PriorityTier]{"model", func() (schema.PriorityTier, bool) { return tierFrom(modelTier) }},
		strategy[schema.PriorityTier]{"lead-score", func() (schema.PriorityTier, bool) {
			if lead == nil {
				return "", false
			}
			return TierFromLeadScore(*lead), true
		}},
	)
	budget, budgetSrc := firstOf(BudgetFromSignals(meta), "business-signals",
		strategy[schema.BudgetLikelihood]{"model", func() (schema.BudgetLikelihood, bool) { return budgetFrom(modelBudget) }},
	)
	d["priority_tier"] = tierSrc
	d["budget_likelihood"] = budgetSrc
	return tier, budget
}
