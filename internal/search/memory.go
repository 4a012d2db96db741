package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"steeple/internal/embedding"
	"steeple/internal/registry/models"
)

type memoryEntry struct {
	church models.Church
	set    embedding.Set
}

// MemorySearcher scores an in-memory corpus. It mirrors the PostgreSQL
// searcher's semantics exactly and backs the resolution tests.
type MemorySearcher struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

func NewMemory() *MemorySearcher {
	return &MemorySearcher{}
}

// Add registers an organization with its stored embedding set.
func (m *MemorySearcher) Add(church models.Church, set embedding.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, memoryEntry{church: church, set: set})
}

func (m *MemorySearcher) Search(_ context.Context, query Query) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var out []Candidate
	for _, entry := range m.entries {
		if !matchesExact(query.State, entry.church.State) {
			continue
		}
		if !matchesExact(query.City, entry.church.City) {
			continue
		}

		score := Score(query.Embeddings, entry.set, query.Weights)
		if score < query.Threshold {
			continue
		}
		out = append(out, Candidate{Church: entry.church, Similarity: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// matchesExact applies the geographic hard gate: an empty filter passes
// everything, a set filter requires a case-insensitive exact match.
func matchesExact(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, value)
}
