// ABOUTME: Renders the slack distribution histogram to PNG with go-chart's bar chart.
// ABOUTME: Consumes only the bare slack values; callers choose where the image is written.
package plot

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there are no slack values to plot.
var ErrNoData = errors.New("no slack values to plot")

// Options controls the rendered chart.
type Options struct {
	Title  string
	Bins   int
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Slack Distribution"
	}
	if o.Bins <= 0 {
		o.Bins = DefaultBins
	}
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 512
	}
	return o
}

// RenderSlackDistribution writes a PNG histogram of slacks to w.
func RenderSlackDistribution(w io.Writer, slacks []float64, opts Options) error {
	opts = opts.withDefaults()
	bins := Histogram(slacks, opts.Bins)
	if len(bins) == 0 {
		return ErrNoData
	}

	maxCount := 0
	bars := make([]chart.Value, 0, len(bins))
	for _, b := range bins {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%.3f", b.Center()),
			Value: float64(b.Count),
		})
		maxCount = max(maxCount, b.Count)
	}

	barWidth := (opts.Width - 120) / len(bins) * 4 / 5
	graph := chart.BarChart{
		Title:      opts.Title + " (slack, ns)",
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   max(barWidth, 4),
		BarSpacing: max(barWidth/4, 2),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render slack chart: %w", err)
	}
	return nil
}
