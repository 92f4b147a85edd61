package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/observability"
)

// MemoryStore is a map-based store for development and tests.
// Pages are deep-copied on the way in and out, so callers never share block
// arrays with the store's internal state.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]*block.Page
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]*block.Page)}
}

// Get retrieves a deep copy of the page.
func (s *MemoryStore) Get(ctx context.Context, id string) (*block.Page, error) {
	start := time.Now()
	s.mu.RLock()
	p, ok := s.pages[id]
	s.mu.RUnlock()
	if !ok {
		observability.Store().OnGet(ctx, id, time.Since(start), ErrNotFound)
		return nil, ErrNotFound
	}
	out, err := p.Clone()
	observability.Store().OnGet(ctx, id, time.Since(start), err)
	return out, err
}

// Put stores a deep copy of the page, replacing any existing version.
func (s *MemoryStore) Put(ctx context.Context, p *block.Page) error {
	start := time.Now()
	cp, err := p.Clone()
	if err == nil {
		s.mu.Lock()
		s.pages[cp.ID] = cp
		s.mu.Unlock()
	}
	observability.Store().OnPut(ctx, p.ID, len(p.Blocks), time.Since(start), err)
	return err
}

// Delete removes a page.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s.mu.Lock()
	_, ok := s.pages[id]
	delete(s.pages, id)
	s.mu.Unlock()
	var err error
	if !ok {
		err = ErrNotFound
	}
	observability.Store().OnDelete(ctx, id, time.Since(start), err)
	return err
}

// List returns summaries of all pages sorted by title.
func (s *MemoryStore) List(ctx context.Context) ([]PageInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PageInfo, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, PageInfo{
			ID:         p.ID,
			Title:      p.Title,
			BlockCount: len(p.Blocks),
			Tags:       slices.Clone(p.Tags),
		})
	}
	slices.SortFunc(out, func(a, b PageInfo) int {
		if a.Title != b.Title {
			if a.Title < b.Title {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

// Close is a no-op for memory stores.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
