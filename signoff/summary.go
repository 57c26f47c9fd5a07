// ABOUTME: Composite signoff summary: overall stats, per-path-group stats and violation-type counts.
// ABOUTME: Computed from a single path sequence; serialises as the nested summary.json/summary.yaml shape.
package signoff

import "github.com/2389-research/edaflow/timing"

// Summary is the full signoff breakdown for one set of paths.
type Summary struct {
	Overall        Stats              `json:"overall" yaml:"overall"`
	ByPathGroup    *OrderedMap[Stats] `json:"by_path_group" yaml:"by_path_group"`
	ViolationTypes *OrderedMap[int]   `json:"violation_types" yaml:"violation_types"`
}

// Summarize computes overall stats, per-group stats and violation-type counts
// from paths. Groups keep first-seen order.
func Summarize(paths []timing.TimingPath) Summary {
	byGroup := NewOrderedMap[Stats]()
	GroupByPathGroup(paths).Range(func(group string, ps []timing.TimingPath) bool {
		byGroup.Set(group, ComputeStats(ps))
		return true
	})

	return Summary{
		Overall:        ComputeStats(paths),
		ByPathGroup:    byGroup,
		ViolationTypes: CountViolationTypes(paths),
	}
}
