package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"steeple/internal/apikey"
	"steeple/internal/resolve"
	dErrors "steeple/pkg/domain-errors"
	"steeple/pkg/platform/httputil"
	"steeple/pkg/requestcontext"
)

// Service defines the interface for resolution operations.
type Service interface {
	Resolve(ctx context.Context, key apikey.APIKey, query resolve.Query) (resolve.Match, error)
}

// Handler wires the resolution endpoint to the resolve service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a resolution handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts resolution endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/church", h.HandleResolve)
}

// HandleResolve handles GET /church requests.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	key := apikey.FromContext(ctx)
	if key == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	params := r.URL.Query()
	query := resolve.Query{
		Name:    params.Get("name"),
		Street:  params.Get("street"),
		City:    params.Get("city"),
		State:   params.Get("state"),
		Zip:     params.Get("zip"),
		Website: params.Get("website"),
	}

	match, err := h.service.Resolve(ctx, *key, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolution failed",
			"request_id", requestID,
			"api_key_id", key.ID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "resolution served",
		"request_id", requestID,
		"api_key_id", key.ID.String(),
		"matched", match.Matched(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, match)
}
