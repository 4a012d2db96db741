package apikey

import "context"

type contextKey struct{}

// ContextKey is exported for tests that need raw context.WithValue.
var ContextKey = contextKey{}

// FromContext retrieves the authenticated API key, or nil if unset.
func FromContext(ctx context.Context) *APIKey {
	if k, ok := ctx.Value(ContextKey).(*APIKey); ok {
		return k
	}
	return nil
}

// WithContext injects an authenticated API key into the context.
func WithContext(ctx context.Context, key *APIKey) context.Context {
	return context.WithValue(ctx, ContextKey, key)
}
