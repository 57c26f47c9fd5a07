// ABOUTME: In-memory store of uploaded report texts keyed by uuid, bounded by entry count.
// ABOUTME: The oldest upload is evicted once the limit is reached.
package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMaxUploads = 32

// Upload is one decoded report received through the dashboard.
type Upload struct {
	ID        string
	Name      string
	Text      string
	CreatedAt time.Time
}

// UploadStore holds recent uploads.
type UploadStore struct {
	mu    sync.RWMutex
	max   int
	items map[string]*Upload
	order []string
}

// NewUploadStore creates a store that keeps at most max uploads.
func NewUploadStore(max int) *UploadStore {
	if max <= 0 {
		max = defaultMaxUploads
	}
	return &UploadStore{
		max:   max,
		items: make(map[string]*Upload),
	}
}

// Put stores text under a fresh id and returns the upload.
func (s *UploadStore) Put(name, text string) *Upload {
	u := &Upload{
		ID:        uuid.NewString(),
		Name:      name,
		Text:      text,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.max {
		delete(s.items, s.order[0])
		s.order = s.order[1:]
	}
	s.items[u.ID] = u
	s.order = append(s.order, u.ID)
	return u
}

// Get returns the upload with id.
func (s *UploadStore) Get(id string) (*Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.items[id]
	return u, ok
}

// Len returns the number of stored uploads.
func (s *UploadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
