// ABOUTME: TemplateEngine loads the embedded dashboard templates and renders them with html/template.
// ABOUTME: Also converts the generated signoff Markdown to HTML with goldmark (GFM tables enabled).
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389-research/edaflow/export"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateEngine loads and renders embedded HTML templates.
type TemplateEngine struct {
	templates map[string]*template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"ns":    func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"slack": export.FormatSlack,
		"join":  strings.Join,
		"eq":    func(a, b string) bool { return a == b },
	}
}

// NewTemplateEngine parses all embedded templates. Each page is parsed
// together with the layout so that the layout wraps every page.
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := templateFuncs()

	pages := []string{
		"dashboard.html",
		"runs.html",
		"run.html",
	}

	engine := &TemplateEngine{
		templates: make(map[string]*template.Template),
	}

	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		engine.templates[page] = t
	}

	return engine, nil
}

// Render executes the named page with data and writes it to w as HTML.
func (e *TemplateEngine) Render(w http.ResponseWriter, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	// Render into a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// RenderTo executes the named page with data and writes it to w.
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return t.ExecuteTemplate(w, "layout.html", data)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// markdownToHTML converts the signoff summary Markdown to HTML. Raw HTML in
// the input is not passed through.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(input) + "</pre>")
	}
	return template.HTML(buf.String())
}
