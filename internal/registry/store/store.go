// Package store persists canonical registry organizations.
package store

import (
	"context"

	"steeple/internal/registry/models"
	"steeple/pkg/domain"
)

// Store manages organization rows.
type Store interface {
	// UpsertBatch inserts the given organizations, skipping rows whose EIN
	// already exists. Returns the number of rows actually inserted.
	UpsertBatch(ctx context.Context, churches []models.Church) (int, error)

	// GetByID returns one organization, or (nil, nil) when absent.
	GetByID(ctx context.Context, id domain.ChurchID) (*models.Church, error)

	// ListNeedingEmbedding returns up to limit organizations whose embedding
	// row is missing or older than the organization's UpdatedAt.
	ListNeedingEmbedding(ctx context.Context, limit int) ([]models.Church, error)
}
