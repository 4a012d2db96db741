package apikey

import (
	"context"

	"steeple/pkg/domain"
)

// Store looks up API keys by their identifier.
// Implementations return (nil, nil) when the key does not exist; the caller
// decides whether absence is an authentication failure.
type Store interface {
	GetByID(ctx context.Context, id domain.APIKeyID) (*APIKey, error)
}
