//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"steeple/internal/audit"
	"steeple/internal/platform/postgres"
	"steeple/pkg/domain"
	"steeple/pkg/testutil/containers"
)

func TestPostgresStoreIntegration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	pool := &postgres.Pool{Pool: pg.Pool}
	store := audit.NewPostgres(pool)

	ctx := context.Background()
	keyID := domain.APIKeyID(uuid.New())
	_, err := pool.Exec(ctx,
		`INSERT INTO api_key (id, name, requests_per_minute) VALUES ($1, $2, $3)`,
		uuid.UUID(keyID), "integration-key", 60,
	)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	matched := uuid.New()

	record := func(at time.Time, decision audit.Decision) {
		t.Helper()
		require.NoError(t, store.Record(ctx, audit.Entry{
			ID:       domain.NewRequestID(),
			APIKeyID: keyID,
			Query: audit.Query{
				Name:  "FIRST BAPTIST CHURCH",
				City:  "SPRINGFIELD",
				State: "IL",
			},
			Decision:  decision,
			CreatedAt: at,
		}))
	}

	record(now.Add(-90*time.Second), audit.Decision{})
	record(now.Add(-30*time.Second), audit.Decision{UUID: &matched, Name: "FIRST BAPTIST CHURCH"})
	record(now, audit.Decision{})

	t.Run("counts only entries inside the window", func(t *testing.T) {
		count, err := store.CountSince(ctx, keyID, now.Add(-time.Minute))
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("window boundary is inclusive", func(t *testing.T) {
		count, err := store.CountSince(ctx, keyID, now.Add(-90*time.Second))
		require.NoError(t, err)
		require.Equal(t, 3, count)
	})

	t.Run("other keys are not counted", func(t *testing.T) {
		count, err := store.CountSince(ctx, domain.APIKeyID(uuid.New()), now.Add(-time.Hour))
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("query and decision land as jsonb", func(t *testing.T) {
		var name string
		err := pool.QueryRow(ctx,
			`SELECT response_data->>'name' FROM request WHERE response_data->>'uuid' = $1`,
			matched.String(),
		).Scan(&name)
		require.NoError(t, err)
		require.Equal(t, "FIRST BAPTIST CHURCH", name)
	})
}
