// ABOUTME: Analysis cache owned by presentation layers, keyed on sha256 of report text or on file path+mtime+size.
// ABOUTME: Bounded by entry count with oldest-first eviction; supports TTL expiry, per-file invalidation and clearing on reload.
package report

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/2389-research/edaflow/signoff"
	"github.com/2389-research/edaflow/timing"
)

// Analysis is the parsed form of one report plus its summary.
type Analysis struct {
	Key     string
	Source  string
	Paths   []timing.TimingPath
	Summary signoff.Summary
}

// CacheStats counts lookups since the cache was created.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// Observer is notified of cache lookups and of every fresh analysis.
type Observer interface {
	CacheLookup(hit bool)
	Analyzed(a *Analysis)
}

// DefaultMaxEntries bounds the number of analyses a Cache keeps.
const DefaultMaxEntries = 64

type cacheEntry struct {
	analysis  *Analysis
	path      string // set for file entries
	createdAt time.Time
}

// Cache memoises report analysis. Parsing is deterministic, so any two
// lookups with the same key may share one Analysis; callers must not modify
// it. A zero TTL keeps entries until they are evicted or invalidated. At most
// DefaultMaxEntries are kept; the oldest entry is evicted first, and a file
// keeps only the entry for its latest modification.
type Cache struct {
	adapter    timing.Adapter
	ttl        time.Duration
	maxEntries int
	entries    map[string]*cacheEntry
	order      []string          // keys, oldest first
	fileKeys   map[string]string // path -> current key
	stats      CacheStats
	obs        Observer
	mu         sync.RWMutex
}

// NewCache creates a cache that parses with adapter.
func NewCache(adapter timing.Adapter, ttl time.Duration) *Cache {
	return &Cache{
		adapter:    adapter,
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		entries:    make(map[string]*cacheEntry),
		fileKeys:   make(map[string]string),
	}
}

// Analyze parses text, returning a cached result when the same text was
// analysed before. The returned Analysis carries source as its label even
// when the cached entry was created under another name.
func (c *Cache) Analyze(source, text string) *Analysis {
	key := TextKey(text)
	a, ok := c.lookup(key)
	if !ok {
		a = c.analyze(key, source, text)
		c.store(key, "", a)
	}
	return withSource(a, source)
}

// AnalyzeFile loads and parses the report at path. The cache key combines the
// path with the file's modification time and size, so an edited file is
// re-read and its previous entry dropped. Load errors are returned and never
// cached.
func (c *Cache) AnalyzeFile(path string) (*Analysis, error) {
	key, err := FileKey(path)
	if err != nil {
		return nil, err
	}
	if a, ok := c.lookup(key); ok {
		return a, nil
	}
	text, err := Load(path)
	if err != nil {
		return nil, err
	}
	a := c.analyze(key, path, text)
	c.store(key, path, a)
	return a, nil
}

// SetObserver installs o to receive cache events. Pass nil to remove it.
func (c *Cache) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obs = o
}

// InvalidateFile drops the entry for the report file at path, if any.
func (c *Cache) InvalidateFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.fileKeys[path]; ok {
		c.removeLocked(key)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.fileKeys = make(map[string]string)
	c.order = nil
}

// Len returns the number of entries held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Cache) lookup(key string) (*Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		if !c.expired(entry, time.Now()) {
			c.stats.Hits++
			if c.obs != nil {
				c.obs.CacheLookup(true)
			}
			return entry.analysis, true
		}
	}
	c.stats.Misses++
	if c.obs != nil {
		c.obs.CacheLookup(false)
	}
	return nil, false
}

func (c *Cache) store(key, path string, a *Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.removeLocked(key)
	if path != "" {
		if old, ok := c.fileKeys[path]; ok {
			c.removeLocked(old)
		}
		c.fileKeys[path] = key
	}
	c.entries[key] = &cacheEntry{analysis: a, path: path, createdAt: now}
	c.order = append(c.order, key)

	// Expired entries are swept on insert; then the oldest go first.
	for _, k := range slices.Clone(c.order) {
		if c.expired(c.entries[k], now) {
			c.removeLocked(k)
		}
	}
	for len(c.order) > c.maxEntries {
		c.removeLocked(c.order[0])
	}

	if c.obs != nil {
		c.obs.Analyzed(a)
	}
}

func (c *Cache) expired(e *cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.createdAt) >= c.ttl
}

// removeLocked drops key and its bookkeeping. c.mu must be held.
func (c *Cache) removeLocked(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	if e.path != "" && c.fileKeys[e.path] == key {
		delete(c.fileKeys, e.path)
	}
}

func (c *Cache) analyze(key, source, text string) *Analysis {
	paths := c.adapter.Parse(text)
	return &Analysis{
		Key:     key,
		Source:  source,
		Paths:   paths,
		Summary: signoff.Summarize(paths),
	}
}

// withSource returns a with its label set to source, copying when the cached
// value carries a different label.
func withSource(a *Analysis, source string) *Analysis {
	if a.Source == source {
		return a
	}
	cp := *a
	cp.Source = source
	return &cp
}

// TextKey derives the cache key for raw report text.
func TextKey(text string) string {
	return fmt.Sprintf("text:%x", sha256.Sum256([]byte(text)))
}

// FileKey derives the cache key for a report file from its path,
// modification time and size.
func FileKey(path string) (string, error) {
	info, err := statReport(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("file:%s:%d:%d", path, info.ModTime().UnixNano(), info.Size()), nil
}
