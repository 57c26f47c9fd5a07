// ABOUTME: Signoff dashboard HTTP server: stats, group breakdown, worst paths, slack plot and report upload.
// ABOUTME: Routes are served by chi; analysis goes through the shared report cache and is optionally recorded to history.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389-research/edaflow/export"
	"github.com/2389-research/edaflow/plot"
	"github.com/2389-research/edaflow/report"
	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/store"
)

const (
	defaultTopK   = 20
	maxUploadSize = 32 << 20
	runsPageLimit = 50
)

// errNoReport is returned when a request names no report and the server has
// no default report path.
var errNoReport = errors.New("no report selected")

// Server is the signoff dashboard.
type Server struct {
	cache      *report.Cache
	uploads    *UploadStore
	history    *store.History
	templates  *TemplateEngine
	router     chi.Router
	addr       string
	reportPath string
	topK       int
}

// ServerConfig holds the configuration for the dashboard server.
type ServerConfig struct {
	Addr       string         // listen address (default: "127.0.0.1:8501")
	ReportPath string         // report shown when no upload is selected; may be empty
	TopK       int            // default worst-path count (default: 20)
	Cache      *report.Cache  // required
	History    *store.History // optional run index
}

// NewServer creates a Server and sets up routing.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("Cache must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8501"
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}

	tmpl, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	cfg.Cache.SetObserver(promObserver{})

	s := &Server{
		cache:      cfg.Cache,
		uploads:    NewUploadStore(defaultMaxUploads),
		history:    cfg.History,
		templates:  tmpl,
		addr:       cfg.Addr,
		reportPath: cfg.ReportPath,
		topK:       cfg.TopK,
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully. Timeouts bound slow clients.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(webRequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Get("/plot.png", s.handlePlot)
	r.Post("/upload", s.handleUpload)
	r.Post("/reload", s.handleReload)
	r.Get("/runs", s.handleRuns)
	r.Get("/runs/{id}", s.handleRunDetail)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/paths", s.handleAPIPaths)
		r.Get("/summary", s.handleAPISummary)
	})

	return r
}

// selection is the report plus view parameters decoded from a request.
type selection struct {
	reportID string
	filter   signoff.Filter
	topK     int
}

func (s *Server) parseSelection(r *http.Request, defaultTopK int) selection {
	q := r.URL.Query()
	sel := selection{
		reportID: q.Get("report"),
		filter: signoff.Filter{
			Group:          q.Get("group"),
			ViolationsOnly: isTruthy(q.Get("violations_only")),
		},
		topK: defaultTopK,
	}
	if v := q.Get("topk"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			sel.topK = n
		}
	}
	return sel
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// analysis resolves the selected report through the cache.
func (s *Server) analysis(sel selection) (*report.Analysis, error) {
	if sel.reportID != "" {
		u, ok := s.uploads.Get(sel.reportID)
		if !ok {
			return nil, fmt.Errorf("upload %s: %w", sel.reportID, errUnknownUpload)
		}
		return s.cache.Analyze(u.Name, u.Text), nil
	}
	if s.reportPath == "" {
		return nil, errNoReport
	}
	return s.cache.AnalyzeFile(s.reportPath)
}

var errUnknownUpload = errors.New("unknown upload")

func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUnknownUpload):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errNoReport):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("web analysis err=%v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// groupView is one row of the per-group table.
type groupView struct {
	Name  string
	Stats signoff.Stats
}

// typeView is one violation-type count.
type typeView struct {
	Type  string
	Count int
}

// PageData holds all data passed to templates for rendering.
type PageData struct {
	Title          string
	Source         string
	ReportID       string
	Message        string
	HasReport      bool
	HasHistory     bool
	Overall        signoff.Stats
	View           signoff.Stats
	Groups         []groupView
	GroupNames     []string
	ViolationTypes []typeView
	Filter         signoff.Filter
	TopK           int
	Top            []export.Row
	ViewCount      int
	SummaryHTML    template.HTML
	PlotURL        string
	Runs           []store.Run
	Run            *store.Run
	RunGroups      []store.GroupRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel := s.parseSelection(r, s.topK)
	data := PageData{
		Title:      "Signoff Dashboard",
		ReportID:   sel.reportID,
		HasHistory: s.history != nil,
		Filter:     sel.filter,
		TopK:       sel.topK,
	}

	a, err := s.analysis(sel)
	switch {
	case errors.Is(err, errNoReport):
		data.Message = "Upload a timing report to begin."
	case err != nil:
		s.writeAnalysisError(w, err)
		return
	default:
		s.fillDashboard(&data, a, sel)
	}

	if err := s.templates.Render(w, "dashboard.html", data); err != nil {
		log.Printf("web render page=dashboard err=%v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) fillDashboard(data *PageData, a *report.Analysis, sel selection) {
	view := signoff.ApplyView(a.Paths, sel.filter)
	top := signoff.TopK(view, sel.topK)

	data.HasReport = true
	data.Source = a.Source
	data.Overall = a.Summary.Overall
	data.View = signoff.ComputeStats(view)
	data.ViewCount = len(view)
	data.Top = export.Rows(top)
	data.GroupNames = a.Summary.ByPathGroup.Keys()
	a.Summary.ByPathGroup.Range(func(name string, st signoff.Stats) bool {
		data.Groups = append(data.Groups, groupView{Name: name, Stats: st})
		return true
	})
	a.Summary.ViolationTypes.Range(func(vt string, n int) bool {
		data.ViolationTypes = append(data.ViolationTypes, typeView{Type: vt, Count: n})
		return true
	})

	q := url.Values{}
	if sel.reportID != "" {
		q.Set("report", sel.reportID)
	}
	data.PlotURL = "/plot.png"
	if len(q) > 0 {
		data.PlotURL += "?" + q.Encode()
	}

	md := export.BuildSummaryMarkdown(export.MarkdownInput{
		ReportName: filepath.Base(a.Source),
		Generated:  time.Now(),
		OutDir:     "(dashboard)",
		All:        a.Paths,
		View:       view,
		TopK:       sel.topK,
	})
	data.SummaryHTML = markdownToHTML(md)
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	sel := s.parseSelection(r, s.topK)
	a, err := s.analysis(sel)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	err = plot.RenderSlackDistribution(w, export.Slacks(a.Paths), plot.Options{})
	if errors.Is(err, plot.ErrNoData) {
		w.Header().Del("Content-Type")
		http.Error(w, "no slack data to plot", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("web plot err=%v", err)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		if isMaxBytesError(err) {
			http.Error(w, "report too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f, h, err := r.FormFile("report")
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		http.Error(w, "missing report file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	text, err := report.DecodeChecked(b)
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		http.Error(w, fmt.Sprintf("upload %s: %v", h.Filename, err), http.StatusBadRequest)
		return
	}

	u := s.uploads.Put(h.Filename, text)
	uploadsTotal.WithLabelValues("accepted").Inc()

	if s.history != nil {
		a := s.cache.Analyze(u.Name, u.Text)
		if _, err := s.history.RecordRun(u.Name, u.Text, a.Paths, a.Summary); err != nil {
			log.Printf("web history record upload=%s err=%v", u.ID, err)
		}
	}

	http.Redirect(w, r, "/?report="+url.QueryEscape(u.ID), http.StatusSeeOther)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	log.Printf("web cache cleared")

	target := "/"
	if err := r.ParseForm(); err == nil {
		if id := r.FormValue("report"); id != "" {
			target += "?report=" + url.QueryEscape(id)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleAPIPaths(w http.ResponseWriter, r *http.Request) {
	sel := s.parseSelection(r, -1)
	a, err := s.analysis(sel)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}
	view := signoff.TopK(signoff.ApplyView(a.Paths, sel.filter), sel.topK)

	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteRowsJSON(w, export.Rows(view)); err != nil {
		log.Printf("web api paths err=%v", err)
	}
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	sel := s.parseSelection(r, s.topK)
	a, err := s.analysis(sel)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteSummaryJSON(w, a.Summary); err != nil {
		log.Printf("web api summary err=%v", err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "run history is disabled", http.StatusNotFound)
		return
	}
	runs, err := s.history.ListRuns(runsPageLimit)
	if err != nil {
		log.Printf("web runs err=%v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		if runs == nil {
			runs = []store.Run{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
		return
	}

	data := PageData{Title: "Run History", HasHistory: true, Runs: runs}
	if err := s.templates.Render(w, "runs.html", data); err != nil {
		log.Printf("web render page=runs err=%v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// runDetail is the JSON form of /runs/{id}.
type runDetail struct {
	Run    store.Run        `json:"run"`
	Groups []store.GroupRow `json:"groups"`
	Top    []export.Row     `json:"top"`
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "run history is disabled", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.history.GetRun(id)
	if errors.Is(err, store.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("web run detail run=%s err=%v", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	groups, err := s.history.RunGroups(id)
	if err != nil {
		log.Printf("web run groups run=%s err=%v", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	paths, err := s.history.RunPaths(id)
	if err != nil {
		log.Printf("web run paths run=%s err=%v", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sel := s.parseSelection(r, s.topK)
	view := signoff.ApplyView(paths, sel.filter)
	top := export.Rows(signoff.TopK(view, sel.topK))
	if groups == nil {
		groups = []store.GroupRow{}
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runDetail{Run: run, Groups: groups, Top: top})
		return
	}

	data := PageData{
		Title:      "Run " + run.RunID,
		HasHistory: true,
		Run:        &run,
		RunGroups:  groups,
		Filter:     sel.filter,
		TopK:       sel.topK,
		Top:        top,
		ViewCount:  len(view),
	}
	if err := s.templates.Render(w, "run.html", data); err != nil {
		log.Printf("web render page=run err=%v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// wantsJSON reports whether the client asked for JSON rather than HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") {
		return false
	}
	return strings.Contains(accept, "application/json")
}

// isMaxBytesError reports whether err (or any error in its chain) is an
// *http.MaxBytesError, indicating the request body exceeded the size limit.
func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
