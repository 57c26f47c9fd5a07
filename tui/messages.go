// ABOUTME: Bubble Tea message types used in the signoff TUI message loop.
// ABOUTME: Report loads and file-change notifications enter the loop as these messages.
package tui

import "github.com/2389-research/edaflow/report"

// ReportLoadedMsg carries the result of one report load.
type ReportLoadedMsg struct {
	Analysis *report.Analysis
	Err      error
}

// ReportChangedMsg signals that the report source changed and should be
// reloaded.
type ReportChangedMsg struct{}
