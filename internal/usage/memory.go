package usage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same compare-and-swap semantics
// as PostgresStore. Used in unit tests and single-node development.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]Record)}
}

func (s *MemoryStore) Get(_ context.Context, userID uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.UserID]; ok {
		return nil
	}
	s.records[rec.UserID] = *rec
	return nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[rec.UserID]
	if !ok || current.Version != rec.Version {
		return ErrVersionConflict
	}
	saved := *rec
	saved.Version++
	s.records[rec.UserID] = saved
	rec.Version++
	return nil
}
