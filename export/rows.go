// ABOUTME: Tabular projection of timing paths used by the CSV, JSON and Markdown exporters.
// ABOUTME: Adds the inferred violation type and flattens notes to one space-joined column.
package export

import (
	"strings"

	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/timing"
)

// Columns is the fixed column order for tabular exports.
var Columns = []string{
	"startpoint",
	"endpoint",
	"path_group",
	"path_type",
	"slack",
	"slack_status",
	"notes",
	"violation_type",
}

// Row is one timing path flattened for tabular output.
type Row struct {
	Startpoint    string  `json:"startpoint"`
	Endpoint      string  `json:"endpoint"`
	PathGroup     string  `json:"path_group"`
	PathType      string  `json:"path_type"`
	Slack         float64 `json:"slack"`
	SlackStatus   string  `json:"slack_status"`
	Notes         string  `json:"notes"`
	ViolationType string  `json:"violation_type"`
}

// NewRow flattens p and classifies it.
func NewRow(p timing.TimingPath) Row {
	return Row{
		Startpoint:    p.Startpoint,
		Endpoint:      p.Endpoint,
		PathGroup:     p.PathGroup,
		PathType:      p.PathType,
		Slack:         p.Slack,
		SlackStatus:   string(p.SlackStatus),
		Notes:         strings.Join(p.Notes, " "),
		ViolationType: string(signoff.Classify(p)),
	}
}

// Rows flattens paths, preserving order.
func Rows(paths []timing.TimingPath) []Row {
	rows := make([]Row, 0, len(paths))
	for _, p := range paths {
		rows = append(rows, NewRow(p))
	}
	return rows
}
