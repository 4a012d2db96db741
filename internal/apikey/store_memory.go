package apikey

import (
	"context"
	"sync"

	"steeple/pkg/domain"
)

// MemoryStore is an in-memory API key store for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[domain.APIKeyID]APIKey
}

func NewMemory() *MemoryStore {
	return &MemoryStore{keys: make(map[domain.APIKeyID]APIKey)}
}

func (s *MemoryStore) GetByID(_ context.Context, id domain.APIKeyID) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[id]
	if !ok {
		return nil, nil
	}
	copied := key
	return &copied, nil
}

// Put inserts or replaces a key.
func (s *MemoryStore) Put(key APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
}
