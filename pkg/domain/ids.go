// Package domain defines shared domain primitives: strongly typed
// identifiers that enforce validity at parse time.
package domain

import (
	"github.com/google/uuid"

	dErrors "steeple/pkg/domain-errors"
)

// APIKeyID identifies a caller of the resolution service.
type APIKeyID uuid.UUID

// ChurchID identifies a canonical registry organization.
type ChurchID uuid.UUID

// RequestID identifies one row in the resolution audit ledger.
type RequestID uuid.UUID

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return u, nil
}

// ParseAPIKeyID validates and returns an APIKeyID.
func ParseAPIKeyID(s string) (APIKeyID, error) {
	u, err := parseUUID(s, "api key id")
	return APIKeyID(u), err
}

// ParseChurchID validates and returns a ChurchID.
func ParseChurchID(s string) (ChurchID, error) {
	u, err := parseUUID(s, "church id")
	return ChurchID(u), err
}

func (id APIKeyID) String() string { return uuid.UUID(id).String() }
func (id APIKeyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ChurchID) String() string { return uuid.UUID(id).String() }
func (id ChurchID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id RequestID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewRequestID returns a fresh ledger row identifier.
func NewRequestID() RequestID { return RequestID(uuid.New()) }
