package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"steeple/internal/platform/postgres"
	"steeple/pkg/domain"
)

// writeTimeout bounds the ledger insert. The row must land for quota
// accounting, but a wedged database should surface as a coded failure rather
// than a hung request.
const writeTimeout = 5 * time.Second

// PostgresStore persists ledger rows in the request table.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Record(ctx context.Context, entry Entry) error {
	requestData, err := json.Marshal(entry.Query)
	if err != nil {
		return fmt.Errorf("marshal request data: %w", err)
	}
	responseData, err := json.Marshal(entry.Decision)
	if err != nil {
		return fmt.Errorf("marshal response data: %w", err)
	}

	const query = `
		INSERT INTO request (id, api_key_id, request_data, response_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err = s.pool.Exec(writeCtx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.APIKeyID),
		requestData,
		responseData,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request row: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountSince(ctx context.Context, keyID domain.APIKeyID, since time.Time) (int, error) {
	const query = `
		SELECT count(*) FROM request
		WHERE api_key_id = $1 AND created_at >= $2
	`
	var count int
	if err := s.pool.QueryRow(ctx, query, uuid.UUID(keyID), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count request rows: %w", err)
	}
	return count, nil
}
