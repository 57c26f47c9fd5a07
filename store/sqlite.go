// ABOUTME: SQLite-backed history of analysed timing reports: one row per run plus its per-group stats and paths.
// ABOUTME: A convenience index for the CLI and dashboard; reports remain the source of truth.
package store

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/timing"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Run is one recorded analysis.
type Run struct {
	RunID      string        `json:"run_id"`
	ReportPath string        `json:"report_path"`
	SHA256     string        `json:"sha256"`
	CreatedAt  time.Time     `json:"created_at"`
	Overall    signoff.Stats `json:"overall"`
}

// GroupRow is the stored stats of one path group within a run.
type GroupRow struct {
	PathGroup string        `json:"path_group"`
	Stats     signoff.Stats `json:"stats"`
}

// History is the run index.
type History struct {
	db *sql.DB
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a run identifier that sorts after every ID issued before
// it in this process, even within the same millisecond.
func NewRunID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// OpenSqlite opens or creates the history database at path.
func OpenSqlite(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			report_path TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			created_at TEXT NOT NULL,
			total_paths INTEGER NOT NULL,
			violated_paths INTEGER NOT NULL,
			met_paths INTEGER NOT NULL,
			wns REAL NOT NULL,
			tns REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS run_groups (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			path_group TEXT NOT NULL,
			total_paths INTEGER NOT NULL,
			violated_paths INTEGER NOT NULL,
			met_paths INTEGER NOT NULL,
			wns REAL NOT NULL,
			tns REAL NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS run_paths (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			startpoint TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			path_group TEXT NOT NULL,
			path_type TEXT NOT NULL,
			slack REAL NOT NULL,
			slack_status TEXT NOT NULL,
			notes TEXT NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

// RecordRun stores one analysis of reportText and returns the new run.
func (h *History) RecordRun(reportPath, reportText string, paths []timing.TimingPath, sum signoff.Summary) (Run, error) {
	now := time.Now().UTC()
	run := Run{
		RunID:      NewRunID(now),
		ReportPath: reportPath,
		SHA256:     fmt.Sprintf("%x", sha256.Sum256([]byte(reportText))),
		CreatedAt:  now.Truncate(time.Second),
		Overall:    sum.Overall,
	}

	tx, err := h.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	o := run.Overall
	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, report_path, sha256, created_at, total_paths, violated_paths, met_paths, wns, tns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.ReportPath, run.SHA256, run.CreatedAt.Format(timeLayout),
		o.TotalPaths, o.ViolatedPaths, o.MetPaths, o.WNS, o.TNS,
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	seq := 0
	var groupErr error
	sum.ByPathGroup.Range(func(group string, st signoff.Stats) bool {
		_, groupErr = tx.Exec(
			`INSERT INTO run_groups (run_id, seq, path_group, total_paths, violated_paths, met_paths, wns, tns)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, seq, group, st.TotalPaths, st.ViolatedPaths, st.MetPaths, st.WNS, st.TNS)
		seq++
		return groupErr == nil
	})
	if groupErr != nil {
		return Run{}, fmt.Errorf("insert run group: %w", groupErr)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO run_paths (run_id, seq, startpoint, endpoint, path_group, path_type, slack, slack_status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare run paths: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, p := range paths {
		notes, err := encodeNotes(p.Notes)
		if err != nil {
			return Run{}, err
		}
		if _, err := stmt.Exec(run.RunID, i, p.Startpoint, p.Endpoint, p.PathGroup,
			p.PathType, p.Slack, string(p.SlackStatus), notes); err != nil {
			return Run{}, fmt.Errorf("insert run path %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `run_id, report_path, sha256, created_at, total_paths, violated_paths, met_paths, wns, tns`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var created string
	if err := row.Scan(&r.RunID, &r.ReportPath, &r.SHA256, &created,
		&r.Overall.TotalPaths, &r.Overall.ViolatedPaths, &r.Overall.MetPaths,
		&r.Overall.WNS, &r.Overall.TNS); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at for run %s: %w", r.RunID, err)
	}
	r.CreatedAt = t
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns all runs.
func (h *History) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run. An unknown id gives ErrRunNotFound.
func (h *History) GetRun(runID string) (Run, error) {
	r, err := scanRun(h.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

// RunPaths returns the paths stored for a run, in parse order.
func (h *History) RunPaths(runID string) ([]timing.TimingPath, error) {
	rows, err := h.db.Query(
		`SELECT startpoint, endpoint, path_group, path_type, slack, slack_status, notes
		 FROM run_paths WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	paths := []timing.TimingPath{}
	for rows.Next() {
		var p timing.TimingPath
		var status, notes string
		if err := rows.Scan(&p.Startpoint, &p.Endpoint, &p.PathGroup, &p.PathType,
			&p.Slack, &status, &notes); err != nil {
			return nil, fmt.Errorf("scan run path row: %w", err)
		}
		p.SlackStatus = timing.SlackStatus(status)
		if p.Notes, err = decodeNotes(notes); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// RunGroups returns the per-group stats stored for a run, in first-seen order.
func (h *History) RunGroups(runID string) ([]GroupRow, error) {
	rows, err := h.db.Query(
		`SELECT path_group, total_paths, violated_paths, met_paths, wns, tns
		 FROM run_groups WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []GroupRow
	for rows.Next() {
		var g GroupRow
		if err := rows.Scan(&g.PathGroup, &g.Stats.TotalPaths, &g.Stats.ViolatedPaths,
			&g.Stats.MetPaths, &g.Stats.WNS, &g.Stats.TNS); err != nil {
			return nil, fmt.Errorf("scan run group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func encodeNotes(notes []string) (string, error) {
	if notes == nil {
		notes = []string{}
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return "", fmt.Errorf("encode notes: %w", err)
	}
	return string(b), nil
}

func decodeNotes(s string) ([]string, error) {
	notes := []string{}
	if err := json.Unmarshal([]byte(s), &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}
