package store

import (
	"context"
	"sync"

	"github.com/serroba/maison-counter/internal/tracking"
)

// MemoryStore is an in-memory implementation of tracking.Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	links    map[tracking.Slug]tracking.TrackedLink
	views    map[tracking.ContentID]int64
	profiles map[string]struct{}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:    make(map[tracking.Slug]tracking.TrackedLink),
		views:    make(map[tracking.ContentID]int64),
		profiles: make(map[string]struct{}),
	}
}

func (m *MemoryStore) IncrementClicks(_ context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[slug]
	if !ok {
		return nil, tracking.ErrNotFound
	}

	link.ClickCount++
	m.links[slug] = link

	return &link, nil
}

func (m *MemoryStore) GetLink(_ context.Context, slug tracking.Slug) (*tracking.TrackedLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[slug]
	if !ok {
		return nil, tracking.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) IncrementViews(_ context.Context, id tracking.ContentID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	views, ok := m.views[id]
	if !ok {
		return 0, tracking.ErrNotFound
	}

	views++
	m.views[id] = views

	return views, nil
}

func (m *MemoryStore) Stats(_ context.Context) (*tracking.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &tracking.Stats{
		TotalPosts: int64(len(m.views)),
		TotalUsers: int64(len(m.profiles)),
	}

	for _, v := range m.views {
		stats.TotalViews += v
	}

	return stats, nil
}

// SaveLink creates or replaces a link.
func (m *MemoryStore) SaveLink(_ context.Context, link *tracking.TrackedLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.Slug] = *link

	return nil
}

// SaveContent creates or replaces a post's view counter.
func (m *MemoryStore) SaveContent(_ context.Context, item *tracking.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.views[item.ID] = item.ViewCount

	return nil
}

// AddProfile registers a user profile id.
func (m *MemoryStore) AddProfile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[id] = struct{}{}

	return nil
}

// Compile-time checks.
var (
	_ tracking.Repository = (*MemoryStore)(nil)
	_ Seeder              = (*MemoryStore)(nil)
)
