package apikey

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"steeple/internal/platform/postgres"
	"steeple/pkg/domain"
)

// PostgresStore reads API keys from the api_key table.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed API key store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.APIKeyID) (*APIKey, error) {
	const query = `
		SELECT id, name, requests_per_minute, created_at
		FROM api_key
		WHERE id = $1
	`

	var (
		key   APIKey
		rawID uuid.UUID
	)
	err := s.pool.QueryRow(ctx, query, uuid.UUID(id)).Scan(
		&rawID,
		&key.Name,
		&key.RequestsPerMinute,
		&key.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query api key: %w", err)
	}

	key.ID = domain.APIKeyID(rawID)
	return &key, nil
}
