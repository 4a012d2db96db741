// Package apikey resolves caller credentials to API key records and exposes
// the authentication middleware.
package apikey

import (
	"time"

	"steeple/pkg/domain"
)

// APIKey is the identity of a caller. Created out-of-band by an operator;
// quota edits are the only mutation. A quota of zero soft-disables the key.
type APIKey struct {
	ID                domain.APIKeyID `json:"id"`
	Name              string          `json:"name"`
	RequestsPerMinute int             `json:"requests_per_minute"`
	CreatedAt         time.Time       `json:"created_at"`
}
