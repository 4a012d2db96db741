package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeple/pkg/domain"
)

func TestMemoryStore_CountSince(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := domain.APIKeyID(uuid.New())
	other := domain.APIKeyID(uuid.New())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := func(k domain.APIKeyID, at time.Time) {
		require.NoError(t, store.Record(ctx, Entry{
			ID:        domain.NewRequestID(),
			APIKeyID:  k,
			CreatedAt: at,
		}))
	}

	record(key, base.Add(-90*time.Second)) // outside window
	record(key, base.Add(-30*time.Second))
	record(key, base.Add(-60*time.Second)) // boundary, inclusive
	record(other, base.Add(-10*time.Second))

	count, err := store.CountSince(ctx, key, base.Add(-60*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, count, "window is inclusive of its lower bound and scoped per key")
}

func TestMemoryStore_FailNext(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	boom := errors.New("ledger down")
	store.FailNext = boom

	err := store.Record(ctx, Entry{ID: domain.NewRequestID()})
	require.ErrorIs(t, err, boom)

	// Failure is one-shot.
	require.NoError(t, store.Record(ctx, Entry{ID: domain.NewRequestID()}))
	assert.Len(t, store.Entries(), 1)
}
