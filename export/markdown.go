// ABOUTME: Builds the one-page Markdown signoff summary (summary.md) from all paths and the filtered view.
// ABOUTME: Sections: overall, current view, per-group breakdown, violation-type counts, top-K worst paths, artifacts.
package export

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/timing"
)

// MarkdownInput is everything the summary page shows. View is expected to be
// filtered and ranked already (see signoff.ApplyView).
type MarkdownInput struct {
	ReportName string
	Generated  time.Time
	OutDir     string
	All        []timing.TimingPath
	View       []timing.TimingPath
	TopK       int
	Artifacts  []string
}

// BuildSummaryMarkdown renders the signoff summary page.
func BuildSummaryMarkdown(in MarkdownInput) string {
	var out strings.Builder

	fmt.Fprintln(&out, "# Signoff Summary (edaflow)")
	fmt.Fprintln(&out)
	fmt.Fprintf(&out, "- Report: `%s`\n", in.ReportName)
	fmt.Fprintf(&out, "- Generated: `%s`\n", in.Generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&out, "- Output directory: `%s`\n", in.OutDir)

	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "## Overall (all parsed paths)")
	fmt.Fprintln(&out)
	writeStatsList(&out, signoff.ComputeStats(in.All))

	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "## Current View (after filters)")
	fmt.Fprintln(&out)
	writeStatsList(&out, signoff.ComputeStats(in.View))

	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "## Breakdown by Path Group (all)")
	fmt.Fprintln(&out)
	writeGroupTable(&out, in.All)

	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "## Violation Type Counts (all)")
	fmt.Fprintln(&out)
	writeViolationTypes(&out, in.All)

	fmt.Fprintln(&out)
	fmt.Fprintf(&out, "## Top %d Worst Paths (current view)\n", in.TopK)
	fmt.Fprintln(&out)
	writeTopPaths(&out, signoff.TopK(in.View, in.TopK))

	if len(in.Artifacts) > 0 {
		fmt.Fprintln(&out)
		fmt.Fprintln(&out, "## Artifacts")
		fmt.Fprintln(&out)
		for _, a := range in.Artifacts {
			fmt.Fprintf(&out, "- `%s`\n", a)
		}
	}

	return out.String()
}

func writeStatsList(out *strings.Builder, s signoff.Stats) {
	fmt.Fprintf(out, "- Total paths: **%d**\n", s.TotalPaths)
	fmt.Fprintf(out, "- Violated paths: **%d**\n", s.ViolatedPaths)
	fmt.Fprintf(out, "- MET paths: **%d**\n", s.MetPaths)
	fmt.Fprintf(out, "- WNS: **%s ns**\n", formatNS(s.WNS))
	fmt.Fprintf(out, "- TNS: **%s ns**\n", formatNS(s.TNS))
}

type groupRow struct {
	name  string
	stats signoff.Stats
}

// writeGroupTable lists per-group stats, worst WNS first.
func writeGroupTable(out *strings.Builder, paths []timing.TimingPath) {
	var groups []groupRow
	signoff.GroupByPathGroup(paths).Range(func(name string, ps []timing.TimingPath) bool {
		groups = append(groups, groupRow{name: name, stats: signoff.ComputeStats(ps)})
		return true
	})
	if len(groups) == 0 {
		fmt.Fprintln(out, "_No paths parsed._")
		return
	}
	slices.SortStableFunc(groups, func(a, b groupRow) int {
		switch {
		case a.stats.WNS < b.stats.WNS:
			return -1
		case a.stats.WNS > b.stats.WNS:
			return 1
		}
		return 0
	})

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.name,
			strconv.Itoa(g.stats.TotalPaths),
			strconv.Itoa(g.stats.ViolatedPaths),
			formatNS(g.stats.WNS),
			formatNS(g.stats.TNS),
		})
	}
	writeTable(out, []string{"path_group", "total_paths", "violated_paths", "wns", "tns"}, rows)
}

type typeCount struct {
	vtype string
	count int
}

// writeViolationTypes lists violation-type counts, most frequent first.
func writeViolationTypes(out *strings.Builder, paths []timing.TimingPath) {
	var counts []typeCount
	signoff.CountViolationTypes(paths).Range(func(vt string, n int) bool {
		counts = append(counts, typeCount{vtype: vt, count: n})
		return true
	})
	if len(counts) == 0 {
		fmt.Fprintln(out, "_No violation types inferred._")
		return
	}
	slices.SortStableFunc(counts, func(a, b typeCount) int {
		return b.count - a.count
	})

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.vtype, strconv.Itoa(c.count)})
	}
	writeTable(out, []string{"violation_type", "count"}, rows)
}

func writeTopPaths(out *strings.Builder, paths []timing.TimingPath) {
	if len(paths) == 0 {
		fmt.Fprintln(out, "_No paths match current filters._")
		return
	}
	rows := make([][]string, 0, len(paths))
	for _, r := range Rows(paths) {
		rows = append(rows, []string{
			FormatSlack(r.Slack),
			r.PathGroup,
			r.ViolationType,
			r.Startpoint,
			r.Endpoint,
			r.Notes,
		})
	}
	writeTable(out, []string{"slack", "path_group", "violation_type", "startpoint", "endpoint", "notes"}, rows)
}

// writeTable renders a GitHub-flavoured pipe table.
func writeTable(out *strings.Builder, header []string, rows [][]string) {
	writeTableRow(out, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeTableRow(out, sep)
	for _, r := range rows {
		writeTableRow(out, r)
	}
}

func writeTableRow(out *strings.Builder, cells []string) {
	out.WriteString("|")
	for _, c := range cells {
		out.WriteString(" ")
		out.WriteString(strings.ReplaceAll(c, "|", `\|`))
		out.WriteString(" |")
	}
	out.WriteString("\n")
}

func formatNS(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
