// ABOUTME: Path parser that runs the block splitter and field extractor over a whole report.
// ABOUTME: Produces TimingPath records in source order and silently drops blocks without a slack line.
package timing

// Parse converts an STA report into timing paths, one per usable block, in
// the order the blocks appear. Blocks without a valid slack line are skipped;
// missing endpoints become placeholders. Parse never fails: an empty report
// and a report whose blocks are all malformed both yield an empty slice.
func Parse(reportText string) []TimingPath {
	paths, _ := parseBlocks(reportText)
	return paths
}

// parseBlocks is Parse plus the raw block count, used for adapter logging.
func parseBlocks(reportText string) ([]TimingPath, int) {
	blocks := SplitBlocks(reportText)
	paths := make([]TimingPath, 0, len(blocks))

	for _, block := range blocks {
		f := ExtractFields(block)
		if !f.HasSlack {
			continue
		}
		paths = append(paths, newTimingPath(f))
	}

	return paths, len(blocks)
}

// newTimingPath builds a TimingPath from extracted fields, filling endpoint
// placeholders.
func newTimingPath(f Fields) TimingPath {
	start := f.Startpoint
	if start == "" {
		start = UnknownStart
	}
	end := f.Endpoint
	if end == "" {
		end = UnknownEnd
	}
	return TimingPath{
		Startpoint:  start,
		Endpoint:    end,
		PathGroup:   f.PathGroup,
		PathType:    f.PathType,
		Slack:       f.Slack,
		SlackStatus: f.SlackStatus,
		Notes:       f.Notes,
	}
}
