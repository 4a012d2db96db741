package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"steeple/internal/registry/models"
	"steeple/pkg/domain"
)

// MemoryStore is an in-memory registry for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[domain.ChurchID]models.Church
	byEIN    map[int64]domain.ChurchID
	embedded map[domain.ChurchID]time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[domain.ChurchID]models.Church),
		byEIN:    make(map[int64]domain.ChurchID),
		embedded: make(map[domain.ChurchID]time.Time),
	}
}

func (s *MemoryStore) UpsertBatch(_ context.Context, churches []models.Church) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	now := time.Now()
	for _, c := range churches {
		if _, exists := s.byEIN[c.EIN]; exists {
			continue
		}
		if c.ID.IsNil() {
			c.ID = domain.ChurchID(uuid.New())
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		s.byID[c.ID] = c
		s.byEIN[c.EIN] = c.ID
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id domain.ChurchID) (*models.Church, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := c
	return &copied, nil
}

func (s *MemoryStore) ListNeedingEmbedding(_ context.Context, limit int) ([]models.Church, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Church
	for id, c := range s.byID {
		if len(out) >= limit {
			break
		}
		embeddedAt, ok := s.embedded[id]
		if !ok || embeddedAt.Before(c.UpdatedAt) {
			out = append(out, c)
		}
	}
	return out, nil
}

// MarkEmbedded records that the organization's embedding is current.
func (s *MemoryStore) MarkEmbedded(id domain.ChurchID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedded[id] = at
}

// Put inserts or replaces an organization without EIN dedup, for tests.
func (s *MemoryStore) Put(c models.Church) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = c
	s.byEIN[c.EIN] = c.ID
}

// All returns every stored organization.
func (s *MemoryStore) All() []models.Church {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Church, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	return out
}
