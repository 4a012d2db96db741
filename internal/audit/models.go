// Package audit owns the resolution ledger: one append-only row per
// completed resolution attempt. The ledger doubles as the rate-limit
// counter source, so a failed write is never silently ignored.
package audit

import (
	"time"

	"github.com/google/uuid"

	"steeple/pkg/domain"
)

// Query is the normalized (uppercased) inbound query as logged.
type Query struct {
	Name    string `json:"name"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip,omitempty"`
	Website string `json:"website,omitempty"`
}

// Decision is the sanitized outbound decision as logged. A nil UUID means
// the pipeline completed without a confident match (or aborted after
// admission; see Entry docs).
type Decision struct {
	UUID    *uuid.UUID `json:"uuid"`
	Name    string     `json:"name,omitempty"`
	Street  string     `json:"street,omitempty"`
	City    string     `json:"city,omitempty"`
	State   string     `json:"state,omitempty"`
	Zip     string     `json:"zip,omitempty"`
	Website string     `json:"website,omitempty"`
}

// Entry is one immutable ledger row. Written exactly once per resolution
// attempt that passes admission; never updated or deleted.
type Entry struct {
	ID        domain.RequestID
	APIKeyID  domain.APIKeyID
	Query     Query
	Decision  Decision
	CreatedAt time.Time
}
