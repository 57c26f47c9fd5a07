// ABOUTME: Statistics aggregator computing pass/fail counts, WNS and TNS over any set of timing paths.
// ABOUTME: Also groups paths by path group and counts inferred violation types, all as pure functions.
package signoff

import (
	"slices"

	"github.com/2389-research/edaflow/timing"
)

// Stats summarises a set of timing paths. WNS and TNS only consider paths
// with negative slack and are 0 when none are violated.
type Stats struct {
	TotalPaths    int     `json:"total_paths" yaml:"total_paths"`
	ViolatedPaths int     `json:"violated_paths" yaml:"violated_paths"`
	MetPaths      int     `json:"met_paths" yaml:"met_paths"`
	WNS           float64 `json:"wns" yaml:"wns"`
	TNS           float64 `json:"tns" yaml:"tns"`
}

// ComputeStats aggregates paths. The result does not depend on input order:
// negative slacks are summed smallest-first so TNS is bit-identical for any
// permutation.
func ComputeStats(paths []timing.TimingPath) Stats {
	var neg []float64
	for _, p := range paths {
		if p.Slack < 0 {
			neg = append(neg, p.Slack)
		}
	}

	s := Stats{
		TotalPaths:    len(paths),
		ViolatedPaths: len(neg),
		MetPaths:      len(paths) - len(neg),
	}
	if len(neg) == 0 {
		return s
	}

	slices.Sort(neg)
	s.WNS = neg[0]
	for _, v := range neg {
		s.TNS += v
	}
	return s
}

// GroupByPathGroup buckets paths by PathGroup. Groups appear in first-seen
// order and each bucket keeps input order.
func GroupByPathGroup(paths []timing.TimingPath) *OrderedMap[[]timing.TimingPath] {
	groups := NewOrderedMap[[]timing.TimingPath]()
	for _, p := range paths {
		bucket, _ := groups.Get(p.PathGroup)
		groups.Set(p.PathGroup, append(bucket, p))
	}
	return groups
}

// CountViolationTypes counts classified paths per type, in first-seen order.
// Paths classified as none are not counted.
func CountViolationTypes(paths []timing.TimingPath) *OrderedMap[int] {
	counts := NewOrderedMap[int]()
	for _, p := range paths {
		vt := Classify(p)
		if vt == TypeNone {
			continue
		}
		n, _ := counts.Get(string(vt))
		counts.Set(string(vt), n+1)
	}
	return counts
}
