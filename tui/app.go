// ABOUTME: Top-level Bubble Tea AppModel for the terminal signoff dashboard.
// ABOUTME: Implements tea.Model and routes load results, file-change notices and key bindings to the header, table and status bar.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/edaflow/export"
	"github.com/2389-research/edaflow/report"
	"github.com/2389-research/edaflow/signoff"
)

const (
	topKStep = 5
	minTopK  = 1
	maxTopK  = 200
)

// AppModel is the top-level Bubble Tea model for the signoff dashboard.
type AppModel struct {
	header    StatsHeaderModel
	paths     PathsPanelModel
	statusBar StatusBarModel

	load     LoadFunc
	analysis *report.Analysis
	filter   signoff.Filter
	topK     int
	err      error

	width  int
	height int
}

// NewAppModel creates an AppModel that reads its report through load.
// filter and topK are the initial view settings.
func NewAppModel(load LoadFunc, filter signoff.Filter, topK int) AppModel {
	if topK < minTopK {
		topK = minTopK
	}
	m := AppModel{
		header:    NewStatsHeaderModel(),
		paths:     NewPathsPanelModel(),
		statusBar: NewStatusBarModel(),
		load:      load,
		filter:    filter,
		topK:      topK,
	}
	m.statusBar.SetView(filter.Group, filter.ViolationsOnly, topK)
	m.statusBar.SetLoading()
	return m
}

// Init implements tea.Model. Starts the first report load.
func (m AppModel) Init() tea.Cmd {
	return LoadReportCmd(m.load)
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case ReportLoadedMsg:
		return m.handleReportLoaded(msg)

	case ReportChangedMsg:
		m.statusBar.SetLoading()
		return m, LoadReportCmd(m.load)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.width < 40 || m.height < 10 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x10.", m.width, m.height)
	}

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")
	b.WriteString(m.paths.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	return b.String()
}

func (m AppModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	return m, nil
}

// layout sizes the panels: header on top, status bar at the bottom, the
// table takes the rest.
func (m *AppModel) layout() {
	statusBarHeight := 1
	tableHeight := m.height - m.header.Height() - statusBarHeight - 1
	if tableHeight < 5 {
		tableHeight = 5
	}
	m.header.SetWidth(m.width)
	m.paths.SetSize(m.width, tableHeight)
	m.statusBar.SetWidth(m.width)
}

func (m AppModel) handleReportLoaded(msg ReportLoadedMsg) (tea.Model, tea.Cmd) {
	m.statusBar.SetLoaded(time.Now(), msg.Err)
	if msg.Err != nil {
		// Keep showing the last good analysis.
		m.err = msg.Err
		return m, nil
	}
	m.err = nil
	m.analysis = msg.Analysis
	m.refresh()
	return m, nil
}

func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "g":
		m.filter.Group = m.nextGroup()
		m.refresh()
		return m, nil
	case "v":
		m.filter.ViolationsOnly = !m.filter.ViolationsOnly
		m.refresh()
		return m, nil
	case "+", "=":
		m.topK = min(m.topK+topKStep, maxTopK)
		m.refresh()
		return m, nil
	case "-", "_":
		m.topK = max(m.topK-topKStep, minTopK)
		m.refresh()
		return m, nil
	case "r":
		m.statusBar.SetLoading()
		return m, LoadReportCmd(m.load)
	}

	var cmd tea.Cmd
	m.paths, cmd = m.paths.Update(msg)
	return m, cmd
}

// groups returns the path groups of the loaded report in first-seen order.
func (m AppModel) groups() []string {
	if m.analysis == nil {
		return nil
	}
	return m.analysis.Summary.ByPathGroup.Keys()
}

// nextGroup cycles all -> each group in first-seen order -> all. A group
// that is not in the report (for example one given on the command line)
// moves to the first group.
func (m AppModel) nextGroup() string {
	groups := m.groups()
	if len(groups) == 0 {
		return ""
	}
	if m.filter.Group == "" {
		return groups[0]
	}
	i := slices.Index(groups, m.filter.Group)
	if i < 0 {
		return groups[0]
	}
	if i == len(groups)-1 {
		return ""
	}
	return groups[i+1]
}

// refresh recomputes the view from the current analysis and settings.
func (m *AppModel) refresh() {
	m.statusBar.SetView(m.filter.Group, m.filter.ViolationsOnly, m.topK)
	if m.analysis == nil {
		return
	}
	view := signoff.ApplyView(m.analysis.Paths, m.filter)
	top := signoff.TopK(view, m.topK)

	m.header.Set(m.analysis.Source, m.analysis.Summary.Overall, signoff.ComputeStats(view))
	m.paths.SetRows(fmt.Sprintf("TOP %d WORST PATHS (%d in view)", m.topK, len(view)), export.Rows(top))
}
