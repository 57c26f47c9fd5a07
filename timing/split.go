// ABOUTME: Block splitter that cuts raw report text into per-path blocks along "=====" separator lines.
// ABOUTME: Purely textual and total: any input, including the empty string, yields a (possibly empty) block list.
package timing

import "strings"

// SplitBlocks cuts report text into trimmed, non-empty blocks. A separator is
// a line made only of '=' characters (surrounding blanks and a trailing '\r'
// are tolerated). Block contents are not interpreted.
func SplitBlocks(text string) []string {
	var blocks []string
	var cur []string

	flush := func() {
		block := strings.TrimSpace(strings.Join(cur, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		cur = cur[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if isSeparator(line) {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()

	return blocks
}

// isSeparator reports whether line consists solely of one or more '='.
func isSeparator(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return strings.Trim(line, "=") == ""
}
