// ABOUTME: Entrypoint for the edaflow CLI: parses an STA timing report and writes signoff artifacts.
// ABOUTME: Also starts the web dashboard (-serve) or the terminal dashboard (-tui), with optional file watching and run history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/edaflow/export"
	"github.com/2389-research/edaflow/report"
	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/store"
	"github.com/2389-research/edaflow/timing"
	"github.com/2389-research/edaflow/tui"
	"github.com/2389-research/edaflow/web"
)

var version = "dev"

type config struct {
	reportPath     string
	outDir         string
	topK           int
	violationsOnly bool
	group          string
	adapter        string
	printPaths     bool
	printSummary   bool
	tui            bool
	serve          bool
	port           int
	watch          bool
	historyPath    string
	noHistory      bool
	dataDir        string
	verbose        bool
	showVersion    bool
	showHelp       bool
}

func main() {
	loadDotEnv(".env")

	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'edaflow -help' for usage.")
		os.Exit(2)
	}
	os.Exit(run(cfg, os.Stdout, os.Stderr))
}

// parseArgs fills a config from command-line arguments. The first positional
// argument is taken as the report path when -report is not given.
func parseArgs(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("edaflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.reportPath, "report", "", "Path to the STA timing report")
	fs.StringVar(&cfg.outDir, "outdir", "out", "Directory for generated artifacts")
	fs.IntVar(&cfg.topK, "topk", 20, "Number of worst paths in top_violations.csv")
	fs.BoolVar(&cfg.violationsOnly, "violations-only", false, "Restrict the view to violated paths")
	fs.StringVar(&cfg.group, "group", "", "Restrict the view to one path group")
	fs.StringVar(&cfg.adapter, "adapter", timing.DefaultAdapter, "Report dialect adapter")
	fs.BoolVar(&cfg.printPaths, "paths", false, "Print parsed paths as JSON and exit")
	fs.BoolVar(&cfg.printSummary, "summary", false, "Print the summary as JSON and exit")
	fs.BoolVar(&cfg.tui, "tui", false, "Open the terminal dashboard")
	fs.BoolVar(&cfg.serve, "serve", false, "Start the web dashboard")
	fs.IntVar(&cfg.port, "port", 8501, "Web dashboard port")
	fs.BoolVar(&cfg.watch, "watch", false, "Re-run when the report file changes")
	fs.StringVar(&cfg.historyPath, "history", "", "Run history database (default: <data-dir>/history.db)")
	fs.BoolVar(&cfg.noHistory, "no-history", false, "Do not record runs")
	fs.StringVar(&cfg.dataDir, "data-dir", "", "Persistent state directory")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Verbose logging")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&cfg.showHelp, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cfg.showHelp = true
			return cfg, nil
		}
		return cfg, err
	}

	rest := fs.Args()
	if cfg.reportPath == "" && len(rest) > 0 {
		cfg.reportPath = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", rest)
	}
	if cfg.topK < 0 {
		return cfg, fmt.Errorf("-topk must be >= 0, got %d", cfg.topK)
	}
	if cfg.port <= 0 || cfg.port > 65535 {
		return cfg, fmt.Errorf("-port must be between 1 and 65535, got %d", cfg.port)
	}
	if cfg.printPaths && cfg.printSummary {
		return cfg, errors.New("-paths and -summary are mutually exclusive")
	}
	if cfg.tui && cfg.serve {
		return cfg, errors.New("-tui and -serve are mutually exclusive")
	}
	return cfg, nil
}

// run executes the mode selected by cfg and returns the process exit code.
func run(cfg config, stdout, stderr io.Writer) int {
	if cfg.showHelp {
		printHelp(stdout, version)
		return 0
	}
	if cfg.showVersion {
		fmt.Fprintf(stdout, "edaflow %s\n", version)
		return 0
	}
	if cfg.reportPath == "" && !cfg.serve {
		printHelp(stderr, version)
		return 2
	}

	adapter, err := timing.NewAdapter(cfg.adapter, timing.AdapterConfig{Name: cfg.adapter, Verbose: cfg.verbose})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	filter := signoff.Filter{Group: cfg.group, ViolationsOnly: cfg.violationsOnly}

	switch {
	case cfg.serve:
		return runServer(cfg, adapter, stderr)
	case cfg.tui:
		return runTUI(cfg, adapter, filter, stderr)
	case cfg.printPaths, cfg.printSummary:
		return runPrint(cfg, adapter, stdout, stderr)
	}

	hist := openHistory(cfg, stderr)
	if hist != nil {
		defer hist.Close()
	}

	code := generate(cfg, adapter, filter, hist, stdout, stderr)
	if !cfg.watch || code != 0 {
		return code
	}

	ctx, cancel := signalContext()
	defer cancel()
	fmt.Fprintf(stderr, "watching %s (Ctrl-C to stop)\n", cfg.reportPath)
	err = report.Watch(ctx, cfg.reportPath, report.DefaultDebounce, func() {
		generate(cfg, adapter, filter, hist, stdout, stderr)
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// generate parses the report, writes every artifact into the output directory
// and records the run in history when one is open.
func generate(cfg config, adapter timing.Adapter, filter signoff.Filter, hist *store.History, stdout, stderr io.Writer) int {
	text, err := report.Load(cfg.reportPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	paths := adapter.Parse(text)

	written, err := export.WriteArtifacts(cfg.outDir, export.Bundle{
		ReportPath: cfg.reportPath,
		Paths:      paths,
		Filter:     filter,
		TopK:       cfg.topK,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "[OK] Generated artifacts:")
	for _, p := range written {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		fmt.Fprintf(stdout, " - %s\n", p)
	}

	if hist != nil {
		rec, err := hist.RecordRun(cfg.reportPath, text, paths, signoff.Summarize(paths))
		if err != nil {
			fmt.Fprintf(stderr, "warning: history: %v\n", err)
		} else if cfg.verbose {
			log.Printf("history recorded run=%s paths=%d", rec.RunID, len(paths))
		}
	}
	return 0
}

// runPrint writes parsed paths or the summary to stdout as JSON.
func runPrint(cfg config, adapter timing.Adapter, stdout, stderr io.Writer) int {
	text, err := report.Load(cfg.reportPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	paths := adapter.Parse(text)

	if cfg.printPaths {
		err = export.WritePathsJSON(stdout, paths)
	} else {
		err = export.WriteSummaryJSON(stdout, signoff.Summarize(paths))
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runServer starts the web dashboard and blocks until SIGINT/SIGTERM.
func runServer(cfg config, adapter timing.Adapter, stderr io.Writer) int {
	hist := openHistory(cfg, stderr)
	if hist != nil {
		defer hist.Close()
	}

	cache := report.NewCache(adapter, 0)
	srv, err := web.NewServer(web.ServerConfig{
		Addr:       fmt.Sprintf("127.0.0.1:%d", cfg.port),
		ReportPath: cfg.reportPath,
		TopK:       cfg.topK,
		Cache:      cache,
		History:    hist,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.watch && cfg.reportPath != "" {
		go func() {
			err := report.Watch(ctx, cfg.reportPath, report.DefaultDebounce, func() {
				cache.InvalidateFile(cfg.reportPath)
				log.Printf("report changed path=%s", cfg.reportPath)
			})
			if err != nil {
				log.Printf("watch path=%s err=%v", cfg.reportPath, err)
			}
		}()
	}

	fmt.Fprintf(stderr, "edaflow dashboard listening on http://%s\n", srv.Addr())
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runTUI opens the terminal dashboard on the report file. With -watch, file
// changes are forwarded to the program as reload messages.
func runTUI(cfg config, adapter timing.Adapter, filter signoff.Filter, stderr io.Writer) int {
	// Log lines would corrupt the alternate screen.
	if cfg.verbose {
		dir, err := resolveDataDir(cfg.dataDir)
		if err == nil && os.MkdirAll(dir, 0o755) == nil {
			f, err := tea.LogToFile(filepath.Join(dir, "tui.log"), "edaflow")
			if err == nil {
				defer f.Close()
			}
		}
	} else {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	cache := report.NewCache(adapter, 0)
	load := func() (*report.Analysis, error) {
		return cache.AnalyzeFile(cfg.reportPath)
	}

	p := tea.NewProgram(tui.NewAppModel(load, filter, cfg.topK), tea.WithAltScreen())

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.watch {
		bridge := tui.NewWatchBridge(p.Send)
		go func() {
			if err := report.Watch(ctx, cfg.reportPath, report.DefaultDebounce, bridge.Notify); err != nil {
				log.Printf("watch path=%s err=%v", cfg.reportPath, err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "error: TUI failed: %v\n", err)
		return 1
	}
	return 0
}

// openHistory opens the run history database. Failures are reported as a
// warning and leave history disabled.
func openHistory(cfg config, stderr io.Writer) *store.History {
	path, err := historyPath(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	h, err := store.OpenSqlite(path)
	if err != nil {
		fmt.Fprintf(stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	return h
}

// historyPath returns the history database path, or "" when history is off.
func historyPath(cfg config) (string, error) {
	if cfg.noHistory {
		return "", nil
	}
	if cfg.historyPath != "" {
		return cfg.historyPath, nil
	}
	dir, err := resolveDataDir(cfg.dataDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// resolveDataDir returns the data directory, preferring an explicit override.
func resolveDataDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return defaultDataDir()
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
