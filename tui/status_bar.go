// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing the active filter and load state.
// ABOUTME: Displays group filter, violations-only flag, top-K, last load time or error, and the key help.
package tui

import (
	"fmt"
	"time"
)

// StatusBarModel displays view settings in a single line.
type StatusBarModel struct {
	group          string
	violationsOnly bool
	topK           int
	loadedAt       time.Time
	loading        bool
	err            error
	width          int
}

// NewStatusBarModel creates a StatusBarModel.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{}
}

// SetView records the current filter settings.
func (m *StatusBarModel) SetView(group string, violationsOnly bool, topK int) {
	m.group = group
	m.violationsOnly = violationsOnly
	m.topK = topK
}

// SetLoading marks a reload in flight.
func (m *StatusBarModel) SetLoading() {
	m.loading = true
}

// SetLoaded records a load outcome. A nil err clears any previous error.
func (m *StatusBarModel) SetLoaded(at time.Time, err error) {
	m.loading = false
	m.err = err
	if err == nil {
		m.loadedAt = at
	}
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	group := m.group
	if group == "" {
		group = "all"
	}
	only := "off"
	if m.violationsOnly {
		only = "on"
	}

	state := "not loaded"
	switch {
	case m.loading:
		state = "loading..."
	case m.err != nil:
		state = ErrorStyle.Render(fmt.Sprintf("error: %v", m.err))
	case !m.loadedAt.IsZero():
		state = "loaded " + m.loadedAt.Format("15:04:05")
	}

	content := fmt.Sprintf("group: %s | violations-only: %s | top %d | %s | g group  v violations  +/- topk  r reload  q quit",
		group, only, m.topK, state)

	style := StatusBarStyle
	if m.width > 0 {
		style = style.Width(m.width).MaxWidth(m.width)
	}
	return style.Render(content)
}
