package apikey

import (
	"log/slog"
	"net/http"
	"strings"

	"steeple/pkg/domain"
	dErrors "steeple/pkg/domain-errors"
	"steeple/pkg/platform/httputil"
	"steeple/pkg/requestcontext"
)

// RequireAPIKey authenticates the bearer credential against the key store
// and injects the resolved APIKey into the request context. Absence of a
// credential, an unparseable credential, and an unknown key are all the same
// authentication failure; only a store error is surfaced differently.
func RequireAPIKey(store Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing bearer token", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			id, err := domain.ParseAPIKeyID(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed api key", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid api key"))
				return
			}

			key, err := store.GetByID(ctx, id)
			if err != nil {
				logger.ErrorContext(ctx, "api key lookup failed", "request_id", requestID, "error", err)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "api key store unavailable"))
				return
			}
			if key == nil {
				logger.WarnContext(ctx, "unauthorized access - unknown api key", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid api key"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(ctx, key)))
		})
	}
}
