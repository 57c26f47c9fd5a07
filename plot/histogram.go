// ABOUTME: Equal-width histogram binning for slack values, matching matplotlib's default hist layout.
// ABOUTME: Degenerate input (all values equal) expands the range by half a unit each side.
package plot

import "slices"

// DefaultBins is the number of bins used when none is requested.
const DefaultBins = 12

// Bin is one histogram bucket covering [Lo, Hi); the last bin also includes Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// Center returns the midpoint of the bin.
func (b Bin) Center() float64 {
	return (b.Lo + b.Hi) / 2
}

// Histogram splits values into equal-width bins between their min and max.
// It returns nil for empty input.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)

	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}
