package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cuemby/notesd/internal/note"
)

// MemStore is an in-memory Store used by tests and by `notesd serve
// --database memory://` for local development, grounding spec §9's
// observation that the port has more than one conformant backend.
type MemStore struct {
	mu             sync.RWMutex
	byID           map[note.ID]*note.Note
	lastAssignedMs int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[note.ID]*note.Note)}
}

func (s *MemStore) Insert(_ context.Context, n *note.Note) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.ID]; exists {
		return false, nil
	}
	cp := *n
	cp.Header = append([]byte(nil), n.Header...)
	cp.Details = append([]byte(nil), n.Details...)
	s.byID[n.ID] = &cp
	if n.CreatedAtMs > s.lastAssignedMs {
		s.lastAssignedMs = n.CreatedAtMs
	}
	return true, nil
}

func (s *MemStore) QueryByTag(_ context.Context, tag uint32, since note.Cursor, limit int) ([]*note.Note, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d must be positive", note.ErrInvalidArgument, limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matching []*note.Note
	for _, n := range s.byID {
		if n.Tag != tag {
			continue
		}
		cur := note.Cursor{CreatedAtMs: n.CreatedAtMs, ID: n.ID}
		if !since.Less(cur) {
			continue
		}
		matching = append(matching, n)
	}
	sort.Slice(matching, func(i, j int) bool {
		ci := note.Cursor{CreatedAtMs: matching[i].CreatedAtMs, ID: matching[i].ID}
		cj := note.Cursor{CreatedAtMs: matching[j].CreatedAtMs, ID: matching[j].ID}
		return ci.Less(cj)
	})

	if len(matching) > limit {
		matching = matching[:limit]
	}
	out := make([]*note.Note, len(matching))
	for i, n := range matching {
		cp := *n
		out[i] = &cp
	}
	return out, nil
}

func (s *MemStore) DeleteOlderThan(_ context.Context, cutoffMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, n := range s.byID {
		if n.CreatedAtMs <= cutoffMs {
			delete(s.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemStore) CountByTag(_ context.Context, tag uint32) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.byID {
		if n.Tag == tag {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) CountTotal(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *MemStore) LastAssignedMs(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAssignedMs, nil
}

func (s *MemStore) Close() error { return nil }
