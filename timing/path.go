// ABOUTME: Data model for one parsed static-timing-analysis path: endpoints, group, type, slack and notes.
// ABOUTME: Defines TimingPath, SlackStatus and the placeholder values used when a block omits a field.
package timing

// SlackStatus is the verdict annotation printed next to a slack value.
type SlackStatus string

const (
	StatusMet      SlackStatus = "MET"
	StatusViolated SlackStatus = "VIOLATED"
)

// Placeholders applied when a block does not name the field.
const (
	UnknownStart = "UNKNOWN_START"
	UnknownEnd   = "UNKNOWN_END"
	Unknown      = "UNKNOWN"
)

// TimingPath is one timing path parsed from a report block. Values are built
// once by the parser and treated as immutable afterwards; Notes is never
// shared between two paths produced by Parse.
type TimingPath struct {
	Startpoint  string      `json:"startpoint" yaml:"startpoint"`
	Endpoint    string      `json:"endpoint" yaml:"endpoint"`
	PathGroup   string      `json:"path_group" yaml:"path_group"`
	PathType    string      `json:"path_type" yaml:"path_type"`
	Slack       float64     `json:"slack" yaml:"slack"`
	SlackStatus SlackStatus `json:"slack_status" yaml:"slack_status"`
	Notes       []string    `json:"notes" yaml:"notes"`
}

// Violated reports whether the path has negative slack. The aggregators
// classify by sign only and never consult SlackStatus.
func (p TimingPath) Violated() bool {
	return p.Slack < 0
}
