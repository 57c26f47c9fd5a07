// ABOUTME: Tests for report loading, UTF-8 decoding, the analysis cache and the file watcher.
// ABOUTME: Cache tests use a counting adapter to observe when parsing actually happens.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/2389-research/edaflow/timing"
)

const twoPaths = `Startpoint: a
Endpoint: b
Path Group: clk
slack (VIOLATED) -0.2
====
Startpoint: c
Endpoint: d
Path Group: clk
slack (MET) 0.1
`

type countingAdapter struct {
	calls atomic.Int32
}

func (c *countingAdapter) Parse(text string) []timing.TimingPath {
	c.calls.Add(1)
	return timing.Parse(text)
}

func TestLoadMissingFileNamesPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.rpt")
	_, err := Load(missing)
	if err == nil {
		t.Fatal("expected error for missing report")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error %q does not name the path", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap ErrNotExist", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.rpt")
	if err := os.WriteFile(p, []byte(" \n\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("err = %v, want ErrEmptyReport", err)
	}
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "r.rpt")
	if err := os.WriteFile(p, []byte(twoPaths), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if text != twoPaths {
		t.Errorf("text changed on load")
	}
}

func TestDecode(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Startpoint: a\xff\n")...)
	got := Decode(in)
	if got != "Startpoint: a�\n" {
		t.Errorf("Decode = %q", got)
	}
	if _, err := DecodeChecked([]byte{0xEF, 0xBB, 0xBF, '\n'}); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("BOM-only input err = %v, want ErrEmptyReport", err)
	}
}

func TestCacheAnalyzeHitsOnSameText(t *testing.T) {
	ad := &countingAdapter{}
	c := NewCache(ad, 0)

	a1 := c.Analyze("upload", twoPaths)
	a2 := c.Analyze("upload", twoPaths)
	if a1 != a2 {
		t.Error("expected the cached analysis to be reused")
	}
	if ad.calls.Load() != 1 {
		t.Errorf("parse calls = %d, want 1", ad.calls.Load())
	}
	if a1.Summary.Overall.TotalPaths != 2 || a1.Summary.Overall.ViolatedPaths != 1 {
		t.Errorf("summary = %+v", a1.Summary.Overall)
	}
	if st := c.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", st)
	}

	c.Analyze("upload", twoPaths+"\n")
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	ad := &countingAdapter{}
	c := NewCache(ad, time.Millisecond)
	c.Analyze("x", twoPaths)
	time.Sleep(5 * time.Millisecond)
	c.Analyze("x", twoPaths)
	if ad.calls.Load() != 2 {
		t.Errorf("parse calls = %d, want 2 after expiry", ad.calls.Load())
	}
}

func TestCacheClearAndInvalidateFile(t *testing.T) {
	ad := &countingAdapter{}
	c := NewCache(ad, 0)
	p := filepath.Join(t.TempDir(), "r.rpt")
	if err := os.WriteFile(p, []byte(twoPaths), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AnalyzeFile(p); err != nil {
		t.Fatal(err)
	}
	c.Analyze("x", twoPaths)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	c.InvalidateFile(p)
	if c.Len() != 1 {
		t.Errorf("Len after InvalidateFile = %d, want 1", c.Len())
	}
	c.InvalidateFile(filepath.Join(t.TempDir(), "unknown.rpt"))
	if _, err := c.AnalyzeFile(p); err != nil {
		t.Fatal(err)
	}
	if ad.calls.Load() != 3 {
		t.Errorf("parse calls = %d, want 3 after invalidation", ad.calls.Load())
	}

	c.Analyze("y", "Startpoint: q\nslack (MET) 1\n")
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Analyze("x", twoPaths)
	if ad.calls.Load() != 5 {
		t.Errorf("parse calls = %d, want 5", ad.calls.Load())
	}
}

func TestCacheEvictsOldestBeyondLimit(t *testing.T) {
	ad := &countingAdapter{}
	c := NewCache(ad, 0)
	c.maxEntries = 8

	for i := range 100 {
		c.Analyze("upload", fmt.Sprintf("Startpoint: s%d\nslack (MET) 1\n", i))
		if c.Len() > 8 {
			t.Fatalf("Len = %d after %d texts, want <= 8", c.Len(), i+1)
		}
	}

	// The newest text is still cached; the oldest was evicted.
	c.Analyze("upload", "Startpoint: s99\nslack (MET) 1\n")
	if ad.calls.Load() != 100 {
		t.Errorf("parse calls = %d, want 100 (newest entry should hit)", ad.calls.Load())
	}
	c.Analyze("upload", "Startpoint: s0\nslack (MET) 1\n")
	if ad.calls.Load() != 101 {
		t.Errorf("parse calls = %d, want 101 (oldest entry should be gone)", ad.calls.Load())
	}
}

func TestCacheDefaultLimit(t *testing.T) {
	c := NewCache(&countingAdapter{}, 0)
	for i := range DefaultMaxEntries + 20 {
		c.Analyze("upload", fmt.Sprintf("Startpoint: s%d\nslack (MET) 1\n", i))
	}
	if c.Len() != DefaultMaxEntries {
		t.Errorf("Len = %d, want %d", c.Len(), DefaultMaxEntries)
	}
}

func TestCacheAnalyzeFileKeepsOneEntryPerFile(t *testing.T) {
	c := NewCache(&countingAdapter{}, 0)
	p := filepath.Join(t.TempDir(), "r.rpt")

	text := twoPaths
	for range 20 {
		// Growing content changes the size part of the key on every edit.
		text += "\n"
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := c.AnalyzeFile(p); err != nil {
			t.Fatal(err)
		}
		if c.Len() != 1 {
			t.Fatalf("Len = %d, want 1 entry for one file", c.Len())
		}
	}
}

func TestCacheExpiredEntriesSweptOnInsert(t *testing.T) {
	c := NewCache(&countingAdapter{}, time.Millisecond)
	c.Analyze("a", twoPaths)
	time.Sleep(5 * time.Millisecond)
	c.Analyze("b", "Startpoint: q\nslack (MET) 1\n")
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after the expired entry is swept", c.Len())
	}
}

func TestCacheAnalyzeKeepsCallerSource(t *testing.T) {
	ad := &countingAdapter{}
	c := NewCache(ad, 0)

	first := c.Analyze("first.rpt", twoPaths)
	second := c.Analyze("second.rpt", twoPaths)
	if ad.calls.Load() != 1 {
		t.Errorf("parse calls = %d, want 1 for identical text", ad.calls.Load())
	}
	if second.Source != "second.rpt" {
		t.Errorf("second Source = %q, want second.rpt", second.Source)
	}
	if first.Source != "first.rpt" {
		t.Errorf("first Source changed to %q", first.Source)
	}
	if again := c.Analyze("first.rpt", twoPaths); again.Source != "first.rpt" {
		t.Errorf("cached entry relabelled to %q", again.Source)
	}
	if len(second.Paths) != 2 || second.Key != first.Key {
		t.Errorf("relabelled analysis lost its contents: %+v", second)
	}
}

func TestCacheAnalyzeFileTracksEdits(t *testing.T) {
	ad := &countingAdapter{}
	c := NewCache(ad, 0)
	p := filepath.Join(t.TempDir(), "r.rpt")
	if err := os.WriteFile(p, []byte(twoPaths), 0o644); err != nil {
		t.Fatal(err)
	}

	a1, err := c.AnalyzeFile(p)
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if a1.Source != p || len(a1.Paths) != 2 {
		t.Errorf("analysis = %+v", a1)
	}
	if _, err := c.AnalyzeFile(p); err != nil {
		t.Fatal(err)
	}
	if ad.calls.Load() != 1 {
		t.Errorf("parse calls = %d, want 1 for unchanged file", ad.calls.Load())
	}

	// A longer file changes the size component of the key.
	if err := os.WriteFile(p, []byte(twoPaths+"====\nStartpoint: e\nslack (MET) 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a3, err := c.AnalyzeFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(a3.Paths) != 3 {
		t.Errorf("paths after edit = %d, want 3", len(a3.Paths))
	}
}

func TestCacheAnalyzeFileErrors(t *testing.T) {
	c := NewCache(&countingAdapter{}, 0)
	if _, err := c.AnalyzeFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := c.AnalyzeFile(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
	if c.Len() != 0 {
		t.Errorf("errors must not be cached, Len = %d", c.Len())
	}
}

func TestWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "r.rpt")
	if err := os.WriteFile(p, []byte(twoPaths), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, 20*time.Millisecond, func() { fired <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.rpt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(twoPaths+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watch callback did not fire")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "no", "such", "r.rpt"), 0, func() {})
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}

type recordingObserver struct {
	hits, misses int
	analyzed     []string
}

func (o *recordingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *recordingObserver) Analyzed(a *Analysis) {
	o.analyzed = append(o.analyzed, a.Source)
}

func TestCacheObserver(t *testing.T) {
	c := NewCache(&countingAdapter{}, 0)
	obs := &recordingObserver{}
	c.SetObserver(obs)

	c.Analyze("first", twoPaths)
	c.Analyze("second", twoPaths)
	if obs.hits != 1 || obs.misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", obs.hits, obs.misses)
	}
	if len(obs.analyzed) != 1 || obs.analyzed[0] != "first" {
		t.Errorf("analyzed = %v", obs.analyzed)
	}

	c.SetObserver(nil)
	c.Analyze("third", "Startpoint: z\nslack (MET) 2\n")
	if obs.misses != 1 {
		t.Error("observer still notified after removal")
	}
}
