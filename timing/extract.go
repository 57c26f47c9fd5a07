// ABOUTME: Field extractor that pulls labelled fields out of one report block with anchored line-prefix patterns.
// ABOUTME: Applies first-match-wins and default policies; reports a missing slack line instead of failing.
package timing

import (
	"regexp"
	"strconv"
	"strings"
)

// Label patterns are case-sensitive and anchored at the start of a line. The
// value never crosses a line break, so an empty label reads as absent.
var (
	startRE = regexp.MustCompile(`(?m)^Startpoint:[ \t]*(.*)$`)
	endRE   = regexp.MustCompile(`(?m)^Endpoint:[ \t]*(.*)$`)
	groupRE = regexp.MustCompile(`(?m)^Path Group:[ \t]*(.*)$`)
	typeRE  = regexp.MustCompile(`(?m)^Path Type:[ \t]*(.*)$`)
	noteRE  = regexp.MustCompile(`(?m)^note:[ \t]*(.*)$`)

	// slack (VIOLATED)                        -0.06
	// slack (MET)                              0.15
	slackRE = regexp.MustCompile(`(?m)^[ \t]*slack[ \t]*\((MET|VIOLATED)\)[ \t]*([-+]?\d+(?:\.\d+)?)`)
)

// Fields holds the values found in a single block. Startpoint and Endpoint
// are empty when the block does not carry them; the parser substitutes the
// placeholders. HasSlack is false when no syntactically valid slack line was
// found, which is the parser's signal to drop the block.
type Fields struct {
	Startpoint  string
	Endpoint    string
	PathGroup   string
	PathType    string
	Slack       float64
	SlackStatus SlackStatus
	HasSlack    bool
	Notes       []string
}

// ExtractFields reads every labelled field from block. It never fails.
func ExtractFields(block string) Fields {
	f := Fields{
		Startpoint: extractOne(startRE, block, ""),
		Endpoint:   extractOne(endRE, block, ""),
		PathGroup:  extractOne(groupRE, block, Unknown),
		PathType:   extractOne(typeRE, block, Unknown),
		Notes:      extractNotes(block),
	}
	f.Slack, f.SlackStatus, f.HasSlack = extractSlack(block)
	return f
}

// extractOne returns the trimmed first capture of pattern, or def when the
// label is missing or blank.
func extractOne(pattern *regexp.Regexp, text, def string) string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return def
	}
	if v := strings.TrimSpace(m[1]); v != "" {
		return v
	}
	return def
}

// extractSlack returns the first slack line that carries both a known status
// and a finite number.
func extractSlack(text string) (float64, SlackStatus, bool) {
	m := slackRE.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		// Only reachable on float64 overflow.
		return 0, "", false
	}
	return v, SlackStatus(m[1]), true
}

// extractNotes collects every note line in order, duplicates included.
func extractNotes(text string) []string {
	matches := noteRE.FindAllStringSubmatch(text, -1)
	notes := make([]string, 0, len(matches))
	for _, m := range matches {
		if n := strings.TrimSpace(m[1]); n != "" {
			notes = append(notes, n)
		}
	}
	return notes
}
