// Package store keeps the live initiative collection in memory.
//
// Every initiative has its own mutex, so read-modify-write cycles such as
// the effort roll-up are atomic per initiative while edits to different
// initiatives proceed in parallel. Each committed write bumps Version.
// Readers always receive deep copies.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// ErrVersionConflict is returned by UpdateAt when the stored version moved.
var ErrVersionConflict = errors.New("version conflict")

// Publisher receives committed snapshots for persistence. It must not block.
type Publisher interface {
	Publish(snapshot *domain.Initiative)
	PublishDelete(id string)
}

type entry struct {
	mu      sync.Mutex
	current *domain.Initiative
	removed bool
}

type Store struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	publisher Publisher
}

type Option func(*Store)

// WithPublisher forwards every committed snapshot to p.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func New(opts ...Option) *Store {
	s := &Store{entries: map[string]*entry{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with items without publishing them.
func (s *Store) Load(items []*domain.Initiative) {
	entries := make(map[string]*entry, len(items))
	for _, i := range items {
		entries[i.ID] = &entry{current: i.Clone()}
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Get returns a copy of the initiative or domain.ErrNotFound.
func (s *Store) Get(id string) (*domain.Initiative, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("initiative %s: %w", id, domain.ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, fmt.Errorf("initiative %s: %w", id, domain.ErrNotFound)
	}
	return e.current.Clone(), nil
}

// List returns copies of every initiative accepted by keep (all when nil),
// ordered by creation time then id.
func (s *Store) List(keep func(*domain.Initiative) bool) []*domain.Initiative {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*domain.Initiative, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed && (keep == nil || keep(e.current)) {
			out = append(out, e.current.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Insert adds a new initiative at version 1. An existing id yields
// domain.ErrDuplicate.
func (s *Store) Insert(i *domain.Initiative) (*domain.Initiative, error) {
	snapshot := i.Clone()
	snapshot.Version = 1

	s.mu.Lock()
	if _, exists := s.entries[i.ID]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("initiative %s: %w", i.ID, domain.ErrDuplicate)
	}
	s.entries[i.ID] = &entry{current: snapshot}
	s.mu.Unlock()

	s.publish(snapshot)
	return snapshot.Clone(), nil
}

// Update runs fn on a private copy of the initiative while holding its lock
// and commits the copy when fn returns nil. On error nothing changes. The
// committed value is returned.
func (s *Store) Update(id string, fn func(*domain.Initiative) error) (*domain.Initiative, error) {
	return s.update(id, -1, fn)
}

// UpdateAt is Update guarded by an expected version.
func (s *Store) UpdateAt(id string, version int64, fn func(*domain.Initiative) error) (*domain.Initiative, error) {
	return s.update(id, version, fn)
}

func (s *Store) update(id string, version int64, fn func(*domain.Initiative) error) (*domain.Initiative, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("initiative %s: %w", id, domain.ErrNotFound)
	}
	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, fmt.Errorf("initiative %s: %w", id, domain.ErrNotFound)
	}
	if version >= 0 && e.current.Version != version {
		cur := e.current.Version
		e.mu.Unlock()
		return nil, fmt.Errorf("initiative %s at version %d, expected %d: %w", id, cur, version, ErrVersionConflict)
	}
	working := e.current.Clone()
	if err := fn(working); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	working.ID = id
	working.Version = e.current.Version + 1
	e.current = working
	snapshot := working.Clone()
	e.mu.Unlock()

	s.publish(snapshot)
	return snapshot.Clone(), nil
}

// Remove hard-deletes the given ids and returns how many existed.
func (s *Store) Remove(ids ...string) int {
	var removed []string
	s.mu.Lock()
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
		delete(s.entries, id)
		removed = append(removed, id)
	}
	s.mu.Unlock()

	if s.publisher != nil {
		for _, id := range removed {
			s.publisher.PublishDelete(id)
		}
	}
	return len(removed)
}

func (s *Store) publish(snapshot *domain.Initiative) {
	if s.publisher != nil {
		s.publisher.Publish(snapshot)
	}
}
