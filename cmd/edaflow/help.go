// ABOUTME: Help display for the edaflow CLI with grouped flags, examples and artifact list.
// ABOUTME: printHelp is shown for -help and when no report is given.
package main

import (
	"fmt"
	"io"

	"github.com/2389-research/edaflow/export"
)

// printHelp writes usage, grouped flags, the artifact list and examples to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "edaflow %s - STA timing report parser and signoff summary\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  edaflow [flags] <report.rpt>         Write signoff artifacts to -outdir")
	fmt.Fprintln(w, "  edaflow -paths <report.rpt>          Print parsed paths as JSON")
	fmt.Fprintln(w, "  edaflow -summary <report.rpt>        Print the summary as JSON")
	fmt.Fprintln(w, "  edaflow -tui <report.rpt>            Terminal dashboard")
	fmt.Fprintln(w, "  edaflow -serve [-port 8501] [report] Web dashboard")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Report Flags:")
	fmt.Fprintln(w, "  -report <path>        Timing report (or first positional argument)")
	fmt.Fprintln(w, "  -adapter <name>       Report dialect (default: mock_sta)")
	fmt.Fprintln(w, "  -outdir <dir>         Artifact directory (default: out)")
	fmt.Fprintln(w, "  -topk <n>             Worst paths in top_violations.csv (default: 20)")
	fmt.Fprintln(w, "  -group <name>         Only paths in this path group")
	fmt.Fprintln(w, "  -violations-only      Only violated paths")
	fmt.Fprintln(w, "  -watch                Re-run when the report file changes")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Dashboard Flags:")
	fmt.Fprintln(w, "  -tui                  Interactive terminal dashboard")
	fmt.Fprintln(w, "  -serve                Web dashboard")
	fmt.Fprintln(w, "  -port <port>          Web dashboard port (default: 8501)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "History:")
	fmt.Fprintln(w, "  -history <db>         Run history database (default: <data-dir>/history.db)")
	fmt.Fprintln(w, "  -no-history           Do not record runs")
	fmt.Fprintln(w, "  -data-dir <dir>       Persistent state directory (default: $XDG_DATA_HOME/edaflow)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -verbose              Log parse and history details")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Artifacts:")
	for _, name := range export.ArtifactNames {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  edaflow examples/timing_report.txt")
	fmt.Fprintln(w, "  edaflow -violations-only -group clk_core -topk 10 examples/timing_report.txt")
	fmt.Fprintln(w, "  edaflow -summary examples/timing_report.txt | jq .overall")
	fmt.Fprintln(w, "  edaflow -tui -watch examples/timing_report.txt")
	fmt.Fprintln(w, "  edaflow -serve -port 9000 examples/timing_report.txt")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  EDAFLOW_DATA_DIR      Overrides the default data directory")
	fmt.Fprintln(w, "  .env in the working directory is loaded without overriding set variables.")
}
