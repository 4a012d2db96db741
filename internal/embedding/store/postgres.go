package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"steeple/internal/embedding"
	"steeple/internal/platform/postgres"
	"steeple/pkg/domain"
)

// PostgresStore persists embedding rows in the church_embedding table using
// pgvector columns.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed embedding store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// optionalVector maps an absent per-field vector to SQL NULL.
func optionalVector(vec []float32) any {
	if len(vec) == 0 {
		return nil
	}
	v := pgvector.NewVector(vec)
	return &v
}

func (s *PostgresStore) Upsert(ctx context.Context, record Record) error {
	const query = `
		INSERT INTO church_embedding (
			id, church_id, full_embedding,
			name_embedding, street_embedding, city_embedding, website_embedding,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8)
		ON CONFLICT (church_id) DO UPDATE SET
			full_embedding = EXCLUDED.full_embedding,
			name_embedding = EXCLUDED.name_embedding,
			street_embedding = EXCLUDED.street_embedding,
			city_embedding = EXCLUDED.city_embedding,
			website_embedding = EXCLUDED.website_embedding,
			updated_at = EXCLUDED.updated_at
	`

	if len(record.Set.Combined) == 0 {
		return fmt.Errorf("combined embedding is required")
	}

	_, err := s.pool.Exec(ctx, query,
		uuid.New(),
		uuid.UUID(record.ChurchID),
		pgvector.NewVector(record.Set.Combined),
		optionalVector(record.Set.Vector(embedding.FieldName)),
		optionalVector(record.Set.Vector(embedding.FieldStreet)),
		optionalVector(record.Set.Vector(embedding.FieldCity)),
		optionalVector(record.Set.Vector(embedding.FieldWebsite)),
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert church embedding: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByChurch(ctx context.Context, id domain.ChurchID) (*Record, error) {
	const query = `
		SELECT full_embedding, name_embedding, street_embedding,
		       city_embedding, website_embedding, updated_at
		FROM church_embedding
		WHERE church_id = $1
	`

	var (
		full                        pgvector.Vector
		name, street, city, website *pgvector.Vector
		record                      Record
	)
	err := s.pool.QueryRow(ctx, query, uuid.UUID(id)).Scan(
		&full, &name, &street, &city, &website, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query church embedding: %w", err)
	}

	record.ChurchID = id
	record.Set = embedding.Set{
		Combined: full.Slice(),
		Fields:   make(map[embedding.Field][]float32, 4),
	}
	for f, vec := range map[embedding.Field]*pgvector.Vector{
		embedding.FieldName:    name,
		embedding.FieldStreet:  street,
		embedding.FieldCity:    city,
		embedding.FieldWebsite: website,
	} {
		if vec != nil {
			record.Set.Fields[f] = vec.Slice()
		}
	}
	return &record, nil
}
