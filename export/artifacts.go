// ABOUTME: Writes the full signoff artifact set for one analysed report into an output directory.
// ABOUTME: paths.json/csv, summary.json/yaml, top_violations.csv, slack_distribution.png and summary.md.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/2389-research/edaflow/plot"
	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/timing"
)

// Artifact file names, in the order WriteArtifacts produces them.
const (
	PathsJSON         = "paths.json"
	PathsCSV          = "paths.csv"
	SummaryJSON       = "summary.json"
	SummaryYAML       = "summary.yaml"
	TopViolationsCSV  = "top_violations.csv"
	SlackDistribution = "slack_distribution.png"
	SummaryMarkdown   = "summary.md"
)

// ArtifactNames lists every artifact WriteArtifacts can produce.
var ArtifactNames = []string{
	PathsJSON,
	PathsCSV,
	SummaryJSON,
	SummaryYAML,
	TopViolationsCSV,
	SlackDistribution,
	SummaryMarkdown,
}

// Bundle is the input for one artifact run. Paths are all parsed paths; the
// filter and TopK shape top_violations.csv and the view section of summary.md.
type Bundle struct {
	ReportPath string
	Paths      []timing.TimingPath
	Filter     signoff.Filter
	TopK       int
	Generated  time.Time
}

// WriteArtifacts writes every artifact into outdir and returns the paths of
// the files written. The slack plot is skipped (and logged) when there are no
// paths to plot.
func WriteArtifacts(outdir string, b Bundle) ([]string, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if b.Generated.IsZero() {
		b.Generated = time.Now()
	}

	rows := Rows(b.Paths)
	view := signoff.ApplyView(b.Paths, b.Filter)
	sum := signoff.Summarize(b.Paths)

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := fn(&buf); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}
		p := filepath.Join(outdir, name)
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, p)
		return nil
	}

	steps := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{PathsJSON, func(w io.Writer) error { return WriteRowsJSON(w, rows) }},
		{PathsCSV, func(w io.Writer) error { return WriteCSV(w, rows) }},
		{SummaryJSON, func(w io.Writer) error { return WriteSummaryJSON(w, sum) }},
		{SummaryYAML, func(w io.Writer) error { return WriteSummaryYAML(w, sum) }},
		{TopViolationsCSV, func(w io.Writer) error { return WriteCSV(w, Rows(signoff.TopK(view, b.TopK))) }},
	}
	for _, s := range steps {
		if err := write(s.name, s.fn); err != nil {
			return written, err
		}
	}

	err := write(SlackDistribution, func(w io.Writer) error {
		return plot.RenderSlackDistribution(w, Slacks(b.Paths), plot.Options{})
	})
	if errors.Is(err, plot.ErrNoData) {
		log.Printf("artifacts skip=%s reason=%q", SlackDistribution, plot.ErrNoData.Error())
	} else if err != nil {
		return written, err
	}

	names := make([]string, 0, len(written)+1)
	for _, p := range written {
		names = append(names, filepath.Base(p))
	}
	names = append(names, SummaryMarkdown)

	md := BuildSummaryMarkdown(MarkdownInput{
		ReportName: filepath.Base(b.ReportPath),
		Generated:  b.Generated,
		OutDir:     filepath.ToSlash(outdir),
		All:        b.Paths,
		View:       view,
		TopK:       b.TopK,
		Artifacts:  names,
	})
	if err := write(SummaryMarkdown, func(w io.Writer) error {
		_, err := io.WriteString(w, md)
		return err
	}); err != nil {
		return written, err
	}

	return written, nil
}

// Slacks returns the bare slack values of paths, in order.
func Slacks(paths []timing.TimingPath) []float64 {
	out := make([]float64, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.Slack)
	}
	return out
}
