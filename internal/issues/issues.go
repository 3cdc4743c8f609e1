// Package issues provides pure helpers over raw analyzer issues: module
// ordering, priority ranking, and the capped flattening used by fallbacks.
package issues

import (
	"sort"
	"strings"

	"github.com/belivan/MaxantAgency-sub013/internal/schema"
)

// canonicalModules is the order in which known analyzer modules are listed.
// Unknown modules follow in lexical order.
var canonicalModules = []string{
	"desktop-visual", "mobile-visual", "seo", "content", "social", "accessibility", "performance",
}

// ModuleOrder returns the keys of byModule in canonical order.
func ModuleOrder(byModule map[string][]schema.RawIssue) []string {
	rank := make(map[string]int, len(canonicalModules))
	for i, m := range canonicalModules {
		rank[m] = i
	}
	out := make([]string, 0, len(byModule))
	for m := range byModule {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// SeverityRank orders severities from most (0) to least severe. Unknown and
// empty values rank last.
func SeverityRank(s schema.Severity) int {
	switch schema.Severity(strings.ToLower(string(s))) {
	case schema.SeverityCritical:
		return 0
	case schema.SeverityHigh:
		return 1
	case schema.SeverityMedium:
		return 2
	case schema.SeverityLow:
		return 3
	default:
		return 4
	}
}

// priorityRank accepts the priority vocabulary analyzers use
// (critical/high/medium/low) and ranks it like severity.
func priorityRank(p string) int {
	return SeverityRank(schema.Severity(p))
}

// TopN returns up to n issues ranked by priority, then severity. Ties keep
// their original order.
func TopN(list []schema.RawIssue, n int) []schema.RawIssue {
	ranked := make([]schema.RawIssue, len(list))
	copy(ranked, list)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := priorityRank(ranked[i].Priority), priorityRank(ranked[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return SeverityRank(ranked[i].Severity) < SeverityRank(ranked[j].Severity)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopNPerModule applies TopN to every module.
func TopNPerModule(byModule map[string][]schema.RawIssue, n int) map[string][]schema.RawIssue {
	out := make(map[string][]schema.RawIssue, len(byModule))
	for m, list := range byModule {
		out[m] = TopN(list, n)
	}
	return out
}

// Count returns the total number of issues across modules.
func Count(byModule map[string][]schema.RawIssue) int {
	total := 0
	for _, list := range byModule {
		total += len(list)
	}
	return total
}

// Sourced is a raw issue tagged with the module that reported it.
type Sourced struct {
	Module string
	Issue  schema.RawIssue
}

// Flatten lists the first perModule issues of each module, in canonical
// module order and original issue order. Issues keep their reported source
// when present; otherwise the module name is used.
func Flatten(byModule map[string][]schema.RawIssue, perModule int) []Sourced {
	var out []Sourced
	for _, m := range ModuleOrder(byModule) {
		list := byModule[m]
		if perModule >= 0 && len(list) > perModule {
			list = list[:perModule]
		}
		for _, iss := range list {
			if iss.Source == "" {
				iss.Source = m
			}
			out = append(out, Sourced{Module: m, Issue: iss})
		}
	}
	return out
}
