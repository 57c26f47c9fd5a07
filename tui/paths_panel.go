// ABOUTME: Implements the scrollable worst-paths table using the bubbles viewport component.
// ABOUTME: Rows are rendered as fixed-width columns with slack colored by status.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/edaflow/export"
	"github.com/2389-research/edaflow/timing"
)

const (
	slackWidth = 9
	groupWidth = 14
	typeWidth  = 16
)

// PathsPanelModel is a scrollable table of timing paths.
type PathsPanelModel struct {
	rows     []export.Row
	title    string
	viewport viewport.Model
	width    int
	height   int
}

// NewPathsPanelModel creates an empty paths panel.
func NewPathsPanelModel() PathsPanelModel {
	return PathsPanelModel{
		viewport: viewport.New(80, 10),
	}
}

// SetRows replaces the table content and scrolls back to the top.
func (m *PathsPanelModel) SetRows(title string, rows []export.Row) {
	m.title = title
	m.rows = rows
	m.syncViewport()
	m.viewport.GotoTop()
}

// Len returns the number of rows shown.
func (m PathsPanelModel) Len() int {
	return len(m.rows)
}

// SetSize sets the available dimensions and updates the viewport.
func (m *PathsPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Border takes 2 lines; title and column header take 2 more.
	vpWidth := w - 2
	vpHeight := h - 4
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.syncViewport()
}

// Update forwards scroll keys to the viewport.
func (m PathsPanelModel) Update(msg tea.Msg) (PathsPanelModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the panel.
func (m PathsPanelModel) View() string {
	var content string
	if len(m.rows) == 0 {
		content = MutedStyle.Render("No paths match current filters.")
	} else {
		content = HeaderRowStyle.Render(m.headerLine()) + "\n" + m.viewport.View()
	}

	rendered := TitleStyle.Render(m.title) + "\n" + content

	return BorderStyle.
		Width(max(m.width-2, 1)).
		Height(max(m.height-2, 1)).
		Render(rendered)
}

func (m *PathsPanelModel) syncViewport() {
	if len(m.rows) == 0 {
		m.viewport.SetContent("")
		return
	}
	lines := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		lines = append(lines, m.formatRow(r))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

// endpointWidth splits what is left of the line between startpoint and endpoint.
func (m PathsPanelModel) endpointWidth() int {
	rest := m.viewport.Width - slackWidth - groupWidth - typeWidth - 4
	return max(rest/2, 8)
}

func (m PathsPanelModel) headerLine() string {
	w := m.endpointWidth()
	return fmt.Sprintf("%*s %-*s %-*s %-*s %s",
		slackWidth, "slack",
		groupWidth, "path_group",
		typeWidth, "violation_type",
		w, "startpoint",
		"endpoint")
}

func (m PathsPanelModel) formatRow(r export.Row) string {
	w := m.endpointWidth()
	slack := fmt.Sprintf("%*s", slackWidth, export.FormatSlack(r.Slack))
	return fmt.Sprintf("%s %-*s %-*s %-*s %s",
		StyleForStatus(timing.SlackStatus(r.SlackStatus)).Render(slack),
		groupWidth, truncate(r.PathGroup, groupWidth),
		typeWidth, truncate(r.ViolationType, typeWidth),
		w, truncate(r.Startpoint, w),
		truncate(r.Endpoint, w))
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
