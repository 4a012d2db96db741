package apikey

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steeple/pkg/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRequireAPIKey(t *testing.T) {
	store := NewMemory()
	known := APIKey{
		ID:                domain.APIKeyID(uuid.New()),
		Name:              "integration partner",
		RequestsPerMinute: 60,
		CreatedAt:         time.Now(),
	}
	store.Put(known)

	var captured *APIKey
	handler := RequireAPIKey(store, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/church", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/church", nil)
		r.Header.Set("Authorization", "Bearer not-a-uuid")
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/church", nil)
		r.Header.Set("Authorization", "Bearer "+uuid.NewString())
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid key passes and lands in context", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/church", nil)
		r.Header.Set("Authorization", "Bearer "+known.ID.String())
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)
		assert.Equal(t, known.ID, captured.ID)
		assert.Equal(t, 60, captured.RequestsPerMinute)
	})
}
