// ABOUTME: Renders the stats header: overall and current-view path counts, WNS and TNS.
// ABOUTME: Values come from signoff.Stats and are shown with four decimals in ns.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/edaflow/signoff"
)

// StatsHeaderModel shows overall and filtered-view statistics.
type StatsHeaderModel struct {
	source  string
	overall signoff.Stats
	view    signoff.Stats
	width   int
}

// NewStatsHeaderModel creates an empty header.
func NewStatsHeaderModel() StatsHeaderModel {
	return StatsHeaderModel{}
}

// Set updates the displayed statistics.
func (m *StatsHeaderModel) Set(source string, overall, view signoff.Stats) {
	m.source = source
	m.overall = overall
	m.view = view
}

// SetWidth sets the header width for rendering.
func (m *StatsHeaderModel) SetWidth(w int) {
	m.width = w
}

// Height is the number of lines View renders.
func (m StatsHeaderModel) Height() int {
	return 3
}

// View renders the header.
func (m StatsHeaderModel) View() string {
	title := TitleStyle.Render("edaflow signoff") + "  " + MutedStyle.Render(m.source)
	lines := []string{
		title,
		statsLine("overall", m.overall),
		statsLine("view   ", m.view),
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(strings.Join(lines, "\n"))
}

func statsLine(label string, s signoff.Stats) string {
	violated := ValueStyle.Render(fmt.Sprintf("%d", s.ViolatedPaths))
	if s.ViolatedPaths > 0 {
		violated = ViolatedStyle.Render(fmt.Sprintf("%d", s.ViolatedPaths))
	}
	return fmt.Sprintf("%s  %s %s  %s %s  %s %s  %s %s  %s %s",
		LabelStyle.Render(label),
		LabelStyle.Render("paths"), ValueStyle.Render(fmt.Sprintf("%d", s.TotalPaths)),
		LabelStyle.Render("violated"), violated,
		LabelStyle.Render("met"), ValueStyle.Render(fmt.Sprintf("%d", s.MetPaths)),
		LabelStyle.Render("WNS"), ValueStyle.Render(fmt.Sprintf("%.4f ns", s.WNS)),
		LabelStyle.Render("TNS"), ValueStyle.Render(fmt.Sprintf("%.4f ns", s.TNS)),
	)
}
