package store

import (
	"context"
	"sync"

	"steeple/pkg/domain"
)

// MemoryStore is an in-memory embedding store for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.ChurchID]Record
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[domain.ChurchID]Record)}
}

func (s *MemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ChurchID] = record
	return nil
}

func (s *MemoryStore) GetByChurch(_ context.Context, id domain.ChurchID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	copied := record
	return &copied, nil
}

// Len returns the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
