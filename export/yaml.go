// ABOUTME: Exports the signoff summary as YAML using gopkg.in/yaml.v3.
// ABOUTME: Mirrors summary.json: overall, by_path_group and violation_types in deterministic order.
package export

import (
	"fmt"
	"io"

	"github.com/2389-research/edaflow/signoff"
	"gopkg.in/yaml.v3"
)

// WriteSummaryYAML writes the summary as a YAML document.
func WriteSummaryYAML(w io.Writer, sum signoff.Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&sum); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("yaml close: %w", err)
	}
	return nil
}
