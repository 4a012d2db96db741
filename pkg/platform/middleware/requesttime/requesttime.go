// Package requesttime pins a single "now" per HTTP request. Rate-limit
// window arithmetic and audit timestamps all read this one instant, so a
// request cannot observe two different clocks.
package requesttime

import (
	"net/http"
	"time"

	"steeple/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
