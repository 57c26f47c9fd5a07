// ABOUTME: Tests for the embedded template engine, Markdown rendering and the upload store.
// ABOUTME: Rendering goes through RenderTo so no HTTP round trip is needed.
package web

import (
	"fmt"
	"strings"
	"testing"

	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/store"
)

func TestTemplateEngineRendersPages(t *testing.T) {
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("NewTemplateEngine: %v", err)
	}

	var out strings.Builder
	err = engine.RenderTo(&out, "runs.html", PageData{
		Title:      "Run History",
		HasHistory: true,
		Runs: []store.Run{{
			RunID:      "01J0000000000000000000000A",
			ReportPath: "r.rpt",
			Overall:    signoff.Stats{TotalPaths: 4, ViolatedPaths: 1, WNS: -0.5, TNS: -0.5},
		}},
	})
	if err != nil {
		t.Fatalf("RenderTo: %v", err)
	}
	html := out.String()
	for _, want := range []string{"<title>Run History · edaflow</title>", "01J0000000000000000000000A", "-0.5000", `href="/runs"`} {
		if !strings.Contains(html, want) {
			t.Errorf("runs page missing %q", want)
		}
	}

	if err := engine.RenderTo(&out, "missing.html", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestDashboardTemplateEscapesReportText(t *testing.T) {
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	err = engine.RenderTo(&out, "dashboard.html", PageData{
		Title:     "Signoff Dashboard",
		HasReport: true,
		Source:    "<script>alert(1)</script>",
		TopK:      5,
	})
	if err != nil {
		t.Fatalf("RenderTo: %v", err)
	}
	if strings.Contains(out.String(), "<script>alert(1)</script>") {
		t.Error("report source was not escaped")
	}
	if !strings.Contains(out.String(), "No paths match current filters.") {
		t.Error("expected empty top-paths placeholder")
	}
}

func TestMarkdownToHTML(t *testing.T) {
	html := string(markdownToHTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<b>raw</b>\n"))
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Errorf("heading not rendered: %s", html)
	}
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "<td>1</td>") {
		t.Errorf("table not rendered: %s", html)
	}
	if strings.Contains(html, "<b>raw</b>") {
		t.Error("raw HTML passed through")
	}
}

func TestUploadStoreEvictsOldest(t *testing.T) {
	s := NewUploadStore(2)
	first := s.Put("a.rpt", "a")
	second := s.Put("b.rpt", "b")
	third := s.Put("c.rpt", "c")

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if _, ok := s.Get(first.ID); ok {
		t.Error("oldest upload was not evicted")
	}
	for _, u := range []*Upload{second, third} {
		got, ok := s.Get(u.ID)
		if !ok || got.Text != u.Text {
			t.Errorf("upload %s missing", u.Name)
		}
	}
	if first.ID == second.ID {
		t.Error("upload ids collide")
	}
}

func TestUploadStoreDefaultLimit(t *testing.T) {
	s := NewUploadStore(0)
	for i := range defaultMaxUploads + 5 {
		s.Put(fmt.Sprintf("%d.rpt", i), "x")
	}
	if s.Len() != defaultMaxUploads {
		t.Errorf("Len = %d, want %d", s.Len(), defaultMaxUploads)
	}
}
