package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"steeple/internal/platform/postgres"
	"steeple/internal/registry/models"
	"steeple/pkg/domain"
)

// PostgresStore persists organizations in the church table.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ChurchColumns selects the full organization row. Columns are qualified
// with the c alias so joining queries stay unambiguous; the similarity
// searcher reuses this list.
const ChurchColumns = `
	c.id, c.ein, c.name,
	coalesce(c.street, ''), coalesce(c.city, ''), coalesce(c.state, ''),
	coalesce(c.zip, ''), coalesce(c.website, ''),
	coalesce(c.ntee, ''), coalesce(c.activity, ''), coalesce(c.affiliation, ''),
	coalesce(c.classification, ''), coalesce(c.foundation, ''), coalesce(c.subsection, ''),
	c.created_at, c.updated_at
`

func scanChurch(row pgx.Row) (*models.Church, error) {
	return ScanChurchWith(row)
}

// ScanChurchWith scans a ChurchColumns row plus any trailing columns the
// caller selected after it.
func ScanChurchWith(row pgx.Row, extra ...any) (*models.Church, error) {
	var (
		c     models.Church
		rawID uuid.UUID
	)
	dest := []any{
		&rawID, &c.EIN, &c.Name,
		&c.Street, &c.City, &c.State,
		&c.Zip, &c.Website,
		&c.NTEE, &c.Activity, &c.Affiliation,
		&c.Classification, &c.Foundation, &c.Subsection,
		&c.CreatedAt, &c.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.ID = domain.ChurchID(rawID)
	return &c, nil
}

func (s *PostgresStore) UpsertBatch(ctx context.Context, churches []models.Church) (int, error) {
	if len(churches) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO church (
			id, ein, name, street, city, state, zip, website,
			ntee, activity, affiliation, classification, foundation, subsection,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		ON CONFLICT (ein) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, c := range churches {
		id := uuid.UUID(c.ID)
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(query,
			id, c.EIN, c.Name, c.Street, c.City, c.State, c.Zip, c.Website,
			c.NTEE, c.Activity, c.Affiliation, c.Classification, c.Foundation, c.Subsection,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range churches {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("upsert church batch: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.ChurchID) (*models.Church, error) {
	query := `SELECT ` + ChurchColumns + ` FROM church c WHERE c.id = $1`

	c, err := scanChurch(s.pool.QueryRow(ctx, query, uuid.UUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query church: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListNeedingEmbedding(ctx context.Context, limit int) ([]models.Church, error) {
	query := `
		SELECT ` + ChurchColumns + `
		FROM church c
		LEFT JOIN church_embedding e ON e.church_id = c.id
		WHERE e.church_id IS NULL OR e.updated_at < c.updated_at
		ORDER BY c.updated_at
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query churches needing embedding: %w", err)
	}
	defer rows.Close()

	var out []models.Church
	for rows.Next() {
		c, err := scanChurch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan church: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate churches: %w", err)
	}
	return out, nil
}
