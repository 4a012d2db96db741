package audit

import (
	"context"
	"sync"
	"time"

	"steeple/pkg/domain"
)

// MemoryStore is an in-memory ledger for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry

	// FailNext makes the next Record call fail with the given error, then
	// clears itself. Used to exercise audit-write failure paths.
	FailNext error
	// CountErr, when set, makes CountSince fail. Used to exercise the
	// fail-closed rate limiter path.
	CountErr error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) CountSince(_ context.Context, keyID domain.APIKeyID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.CountErr != nil {
		return 0, s.CountErr
	}

	count := 0
	for _, e := range s.entries {
		if e.APIKeyID == keyID && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// Entries returns a snapshot of all recorded entries.
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntriesFor returns the entries recorded for one key.
func (s *MemoryStore) EntriesFor(keyID domain.APIKeyID) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.APIKeyID == keyID {
			out = append(out, e)
		}
	}
	return out
}
