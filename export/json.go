// ABOUTME: JSON writers for path rows (paths.json), raw parsed paths and the nested signoff summary (summary.json).
// ABOUTME: Output is indented with two spaces; summary maps keep first-seen key order.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/timing"
)

// WriteRowsJSON writes rows as an indented JSON array.
func WriteRowsJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	return writeJSON(w, rows)
}

// WritePathsJSON writes parsed paths as an indented JSON array, keeping notes
// as a list.
func WritePathsJSON(w io.Writer, paths []timing.TimingPath) error {
	if paths == nil {
		paths = []timing.TimingPath{}
	}
	return writeJSON(w, paths)
}

// WriteSummaryJSON writes the summary as an indented JSON object.
func WriteSummaryJSON(w io.Writer, sum signoff.Summary) error {
	return writeJSON(w, sum)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
