package core

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. Useful for tests and short-lived
// runs; it honors the same first-committer-wins contract as FileStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Identity]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Identity]*Record)}
}

// Location returns a stable synthetic location for id.
func (s *MemoryStore) Location(id Identity) string {
	return "mem://" + id.Kind() + "/" + id.Key()
}

// Exists reports whether a record is present for id.
func (s *MemoryStore) Exists(ctx context.Context, id Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

// Write stores a copy of rec under id unless one is already present.
func (s *MemoryStore) Write(ctx context.Context, id Identity, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return nil
	}
	s.records[id] = rec.Clone()
	return nil
}

// Read returns a copy of the record for id.
func (s *MemoryStore) Read(ctx context.Context, id Identity) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, NotFoundError(id)
	}
	return rec.Clone(), nil
}
