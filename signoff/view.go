// ABOUTME: View helpers for presentation layers: path-group / violations-only filtering and worst-first ranking.
// ABOUTME: Ranking is a stable ascending sort on slack so equal-slack paths keep their report order.
package signoff

import (
	"cmp"
	"slices"

	"github.com/2389-research/edaflow/timing"
)

// Filter selects which paths a view shows. An empty Group means no group
// filter.
type Filter struct {
	Group          string
	ViolationsOnly bool
}

// Match reports whether p passes the filter.
func (f Filter) Match(p timing.TimingPath) bool {
	if f.Group != "" && p.PathGroup != f.Group {
		return false
	}
	if f.ViolationsOnly && p.Slack >= 0 {
		return false
	}
	return true
}

// ApplyView filters paths and ranks the survivors worst slack first. The
// input slice is not modified.
func ApplyView(paths []timing.TimingPath, f Filter) []timing.TimingPath {
	out := make([]timing.TimingPath, 0, len(paths))
	for _, p := range paths {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	SortWorst(out)
	return out
}

// SortWorst sorts paths in place by ascending slack, keeping the relative
// order of equal-slack paths.
func SortWorst(paths []timing.TimingPath) {
	slices.SortStableFunc(paths, func(a, b timing.TimingPath) int {
		return cmp.Compare(a.Slack, b.Slack)
	})
}

// TopK returns at most k leading paths. A negative k returns all of them.
func TopK(paths []timing.TimingPath, k int) []timing.TimingPath {
	if k < 0 || k >= len(paths) {
		return paths
	}
	return paths[:k]
}
