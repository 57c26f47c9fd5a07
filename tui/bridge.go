// ABOUTME: Bridge connecting report loading and file watching to the Bubble Tea message loop.
// ABOUTME: Provides the LoadFunc type, a tea.Cmd factory for loads, and WatchBridge for change injection.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/edaflow/report"
)

// LoadFunc produces a fresh analysis of the report being viewed.
type LoadFunc func() (*report.Analysis, error)

// LoadReportCmd returns a tea.Cmd that runs load and reports the outcome as
// a ReportLoadedMsg.
func LoadReportCmd(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		a, err := load()
		return ReportLoadedMsg{Analysis: a, Err: err}
	}
}

// WatchBridge wraps a tea.Program's Send method so a file watcher running
// outside the program can request reloads.
type WatchBridge struct {
	send func(msg tea.Msg)
}

// NewWatchBridge creates a WatchBridge that sends messages via send.
// Typically called with program.Send as the argument.
func NewWatchBridge(send func(msg tea.Msg)) *WatchBridge {
	return &WatchBridge{send: send}
}

// Notify matches the report.Watch callback signature.
func (b *WatchBridge) Notify() {
	b.send(ReportChangedMsg{})
}
