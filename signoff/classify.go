// ABOUTME: Heuristic violation-type classifier that labels a timing path from its notes and slack sign.
// ABOUTME: Precedence is transition > max_capacitance > setup > none; it is a triage hint, not EDA ground truth.
package signoff

import (
	"strings"

	"github.com/2389-research/edaflow/timing"
)

// ViolationType is the inferred category of a timing path.
type ViolationType string

const (
	TypeTransition     ViolationType = "transition"
	TypeMaxCapacitance ViolationType = "max_capacitance"
	TypeSetup          ViolationType = "setup"
	TypeNone           ViolationType = "none"
)

// noteRules are checked in order against the lower-cased notes; the first
// keyword found decides the type. "capacitance" also covers the
// max_capacitance spelling.
var noteRules = []struct {
	keyword string
	vtype   ViolationType
}{
	{"transition", TypeTransition},
	{"capacitance", TypeMaxCapacitance},
}

// Classify infers a violation type for p. A note keyword wins over the slack
// sign; a negative-slack path without a matching note falls into setup.
//
// The precedence order has not been validated against labelled data and
// notes can plausibly match several categories, so treat the result as a
// best-effort hint.
func Classify(p timing.TimingPath) ViolationType {
	notes := strings.ToLower(strings.Join(p.Notes, " "))
	for _, r := range noteRules {
		if strings.Contains(notes, r.keyword) {
			return r.vtype
		}
	}
	if p.Slack < 0 {
		return TypeSetup
	}
	return TypeNone
}
