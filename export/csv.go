// ABOUTME: CSV writer for flattened timing-path rows (paths.csv and top_violations.csv).
// ABOUTME: Emits a header row in Columns order and formats slack with shortest round-trip precision.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Startpoint,
			r.Endpoint,
			r.PathGroup,
			r.PathType,
			FormatSlack(r.Slack),
			r.SlackStatus,
			r.Notes,
			r.ViolationType,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// FormatSlack renders a slack value with the fewest digits that round-trip.
func FormatSlack(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
