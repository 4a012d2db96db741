// Package store persists per-organization embedding rows (1:1 with the
// registry, refreshed whenever the parent's text fields change).
package store

import (
	"context"
	"time"

	"steeple/internal/embedding"
	"steeple/pkg/domain"
)

// Record is one stored embedding row.
type Record struct {
	ChurchID  domain.ChurchID
	Set       embedding.Set
	UpdatedAt time.Time
}

// Store manages embedding rows.
type Store interface {
	// Upsert inserts or replaces the row for the record's organization.
	Upsert(ctx context.Context, record Record) error

	// GetByChurch returns the row for one organization, or (nil, nil).
	GetByChurch(ctx context.Context, id domain.ChurchID) (*Record, error)
}
