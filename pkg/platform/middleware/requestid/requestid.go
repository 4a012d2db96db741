// Package requestid assigns each request a correlation ID for log and trace
// stitching.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"steeple/pkg/requestcontext"
)

// Header carries the correlation ID on responses and trusted inbound calls.
const Header = "X-Request-Id"

// Middleware reuses the caller's ID when present, otherwise mints one, and
// echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
