package audit

import (
	"context"
	"time"

	"steeple/pkg/domain"
)

// Store appends ledger rows and aggregates them for rate-limit counting.
type Store interface {
	// Record appends one entry. The write must be atomic from the caller's
	// point of view.
	Record(ctx context.Context, entry Entry) error

	// CountSince returns how many entries exist for the key with
	// CreatedAt >= since.
	CountSince(ctx context.Context, keyID domain.APIKeyID, since time.Time) (int, error)
}
