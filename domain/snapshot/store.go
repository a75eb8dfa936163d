package snapshot

import (
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
)

// Releaser frees an addressable reference.
type Releaser interface{ Revoke(ref string) }

// Store is a bounded, newest-first collection of snapshots. Entries pushed
// past capacity are dropped from the tail and their references released.
type Store struct {
	mu       sync.Mutex
	capacity int
	items    []Snapshot
	refs     Releaser
	logger   *slog.Logger
}

// NewStore returns a store holding at most capacity snapshots.
func NewStore(capacity int, refs Releaser, logger *slog.Logger) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{capacity: capacity, refs: refs, logger: logger, items: make([]Snapshot, 0, capacity)}
}

// Push prepends s and returns the snapshots evicted to honor capacity,
// oldest last.
func (s *Store) Push(snap Snapshot) []Snapshot {
	s.mu.Lock()
	s.items = append(s.items, Snapshot{})
	copy(s.items[1:], s.items)
	s.items[0] = snap
	var evicted []Snapshot
	if len(s.items) > s.capacity {
		evicted = append(evicted, s.items[s.capacity:]...)
		clear(s.items[s.capacity:])
		s.items = s.items[:s.capacity]
	}
	size := len(s.items)
	s.mu.Unlock()

	for _, e := range evicted {
		s.release(e)
	}
	if s.logger != nil {
		s.logger.Debug("snapshot stored",
			"ref", snap.Ref,
			"size", humanize.Bytes(uint64(len(snap.Data))),
			"count", size,
			"evicted", len(evicted),
		)
	}
	return evicted
}

// List returns the stored snapshots, newest first.
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.items))
	copy(out, s.items)
	return out
}

// Latest returns the most recently pushed snapshot.
func (s *Store) Latest() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Snapshot{}, false
	}
	return s.items[0], true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Capacity() int { return s.capacity }

// Clear drops every snapshot and releases all references.
func (s *Store) Clear() {
	s.mu.Lock()
	items := s.items
	s.items = make([]Snapshot, 0, s.capacity)
	s.mu.Unlock()
	for _, e := range items {
		s.release(e)
	}
}

func (s *Store) release(e Snapshot) {
	if s.refs != nil && e.Ref != "" {
		s.refs.Revoke(e.Ref)
	}
}
