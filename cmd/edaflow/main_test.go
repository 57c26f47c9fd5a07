// ABOUTME: Tests for edaflow flag parsing and the batch modes: artifacts, -paths, -summary and run history.
// ABOUTME: run is driven directly with in-memory stdout/stderr; no subprocess is started.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389-research/edaflow/export"
	"github.com/2389-research/edaflow/store"
)

const sampleReport = `Startpoint: core/u_alu/reg_a
Endpoint: core/u_alu/reg_q
Path Group: clk_core
Path Type: max
note: transition violation suspected
slack (VIOLATED) -0.12
====
Startpoint: io/pad_in
Endpoint: io/sync_ff
Path Group: clk_io
slack (MET) 0.30
`

func writeSample(t *testing.T, text string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "timing_report.txt")
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func mustParse(t *testing.T, args ...string) config {
	t.Helper()
	cfg, err := parseArgs(args)
	if err != nil {
		t.Fatalf("parseArgs(%q): %v", args, err)
	}
	return cfg
}

func TestParseArgsDefaults(t *testing.T) {
	cfg := mustParse(t)
	if cfg.outDir != "out" || cfg.topK != 20 || cfg.port != 8501 || cfg.adapter != "mock_sta" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.reportPath != "" || cfg.violationsOnly || cfg.group != "" {
		t.Errorf("unexpected view defaults: %+v", cfg)
	}
}

func TestParseArgsFlags(t *testing.T) {
	cfg := mustParse(t, "-report", "r.rpt", "-outdir", "o", "-topk", "5",
		"-violations-only", "-group", "clk_core", "-watch", "-no-history", "-verbose")
	if cfg.reportPath != "r.rpt" || cfg.outDir != "o" || cfg.topK != 5 {
		t.Errorf("got %+v", cfg)
	}
	if !cfg.violationsOnly || cfg.group != "clk_core" || !cfg.watch || !cfg.noHistory || !cfg.verbose {
		t.Errorf("got %+v", cfg)
	}
}

func TestParseArgsPositionalReport(t *testing.T) {
	cfg := mustParse(t, "-topk", "3", "r.rpt")
	if cfg.reportPath != "r.rpt" {
		t.Errorf("reportPath = %q, want r.rpt", cfg.reportPath)
	}
	cfg = mustParse(t, "-report", "a.rpt")
	if cfg.reportPath != "a.rpt" {
		t.Errorf("reportPath = %q, want a.rpt", cfg.reportPath)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := [][]string{
		{"-topk", "-1"},
		{"-port", "0"},
		{"-paths", "-summary", "r.rpt"},
		{"-tui", "-serve"},
		{"a.rpt", "b.rpt"},
		{"-no-such-flag"},
		{"-topk", "many"},
	}
	for _, args := range tests {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%q) should fail", args)
		}
	}
}

func TestParseArgsHelpShortFlag(t *testing.T) {
	cfg := mustParse(t, "-h")
	if !cfg.showHelp {
		t.Error("-h should request help")
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(config{showVersion: true}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got := stdout.String(); got != "edaflow "+version+"\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRunUnknownAdapter(t *testing.T) {
	cfg := mustParse(t, "-adapter", "primetime", "-no-history", writeSample(t, sampleReport))
	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "error:") || !strings.Contains(stderr.String(), "mock_sta") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunMissingReportFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.rpt")
	cfg := mustParse(t, "-no-history", "-outdir", t.TempDir(), missing)
	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "error: read report "+missing) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	outdir := filepath.Join(t.TempDir(), "out")
	cfg := mustParse(t, "-no-history", "-outdir", outdir, "-violations-only", writeSample(t, sampleReport))

	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if lines[0] != "[OK] Generated artifacts:" {
		t.Errorf("first line = %q", lines[0])
	}
	if len(lines) != 1+len(export.ArtifactNames) {
		t.Fatalf("listed %d artifacts, want %d:\n%s", len(lines)-1, len(export.ArtifactNames), stdout.String())
	}
	for i, name := range export.ArtifactNames {
		line := lines[i+1]
		if !strings.HasPrefix(line, " - ") || !strings.HasSuffix(line, name) {
			t.Errorf("line %d = %q, want suffix %s", i+1, line, name)
		}
		if !filepath.IsAbs(strings.TrimPrefix(line, " - ")) {
			t.Errorf("artifact path not absolute: %q", line)
		}
		if _, err := os.Stat(filepath.Join(outdir, name)); err != nil {
			t.Errorf("artifact %s not written: %v", name, err)
		}
	}

	top, err := os.ReadFile(filepath.Join(outdir, export.TopViolationsCSV))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(top), "io/pad_in") {
		t.Error("violations-only view should drop the MET path from top_violations.csv")
	}
}

func TestRunPrintPaths(t *testing.T) {
	cfg := mustParse(t, "-paths", writeSample(t, sampleReport))
	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	var paths []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &paths); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout.String())
	}
	if len(paths) != 2 || paths[0]["startpoint"] != "core/u_alu/reg_a" {
		t.Errorf("paths = %v", paths)
	}
}

func TestRunPrintSummary(t *testing.T) {
	cfg := mustParse(t, "-summary", writeSample(t, sampleReport))
	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	var sum struct {
		Overall struct {
			TotalPaths    int     `json:"total_paths"`
			ViolatedPaths int     `json:"violated_paths"`
			WNS           float64 `json:"wns"`
		} `json:"overall"`
		ViolationTypes map[string]int `json:"violation_types"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Overall.TotalPaths != 2 || sum.Overall.ViolatedPaths != 1 || sum.Overall.WNS != -0.12 {
		t.Errorf("overall = %+v", sum.Overall)
	}
	if sum.ViolationTypes["transition"] != 1 {
		t.Errorf("violation types = %v", sum.ViolationTypes)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "history.db")
	report := writeSample(t, sampleReport)
	cfg := mustParse(t, "-history", dbPath, "-outdir", t.TempDir(), report)

	var stdout, stderr bytes.Buffer
	for range 2 {
		if code := run(cfg, &stdout, &stderr); code != 0 {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
		}
	}

	h, err := store.OpenSqlite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	runs, err := h.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(runs))
	}
	if runs[0].ReportPath != report || runs[0].Overall.TotalPaths != 2 {
		t.Errorf("latest run = %+v", runs[0])
	}
}

func TestRunHistoryOpenFailureIsWarning(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// The history parent is a regular file, so the database cannot be created.
	cfg := mustParse(t, "-history", filepath.Join(blocker, "history.db"), "-outdir", t.TempDir(), writeSample(t, sampleReport))

	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "warning: history disabled") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunBundledExampleReport(t *testing.T) {
	cfg := mustParse(t, "-summary", filepath.Join("..", "..", "examples", "timing_report.txt"))
	var stdout, stderr bytes.Buffer
	if code := run(cfg, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	var sum struct {
		Overall struct {
			TotalPaths    int     `json:"total_paths"`
			ViolatedPaths int     `json:"violated_paths"`
			WNS           float64 `json:"wns"`
		} `json:"overall"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.Overall.TotalPaths != 7 || sum.Overall.ViolatedPaths != 5 || sum.Overall.WNS != -0.207 {
		t.Errorf("overall = %+v", sum.Overall)
	}
}
