// Package http assembles the public router: platform middleware, health and
// metrics endpoints, and the authenticated resolution surface.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"steeple/internal/apikey"
	resolvehandler "steeple/internal/resolve/handler"
	"steeple/pkg/platform/httputil"
	"steeple/pkg/platform/middleware/requestid"
	"steeple/pkg/platform/middleware/requesttime"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Resolve *resolvehandler.Handler
	Keys    apikey.Store
	Health  HealthChecker
	Logger  *slog.Logger
}

// NewRouter wires all endpoints. /healthz and /metrics are unauthenticated;
// everything else requires a bearer API key.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(apikey.RequireAPIKey(deps.Keys, deps.Logger))
		deps.Resolve.Register(r)
	})

	return r
}

func handleHealth(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
