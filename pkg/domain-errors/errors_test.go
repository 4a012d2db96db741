package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Run("plain error defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("direct domain error", func(t *testing.T) {
		err := New(CodeRateLimited, "quota exceeded")
		assert.Equal(t, CodeRateLimited, CodeOf(err))
		assert.True(t, HasCode(err, CodeRateLimited))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		inner := New(CodeUnauthorized, "unknown api key")
		outer := fmt.Errorf("handler: %w", inner)
		assert.True(t, HasCode(outer, CodeUnauthorized))
	})

	t.Run("wrap preserves cause chain", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUnavailable, "ledger unreachable")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, CodeUnavailable, CodeOf(err))
		assert.Equal(t, "ledger unreachable", MessageOf(err))
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeNoSearchParameters: http.StatusBadRequest,
		CodeMissingRequired:    http.StatusBadRequest,
		CodeEmbeddingFailed:    http.StatusBadGateway,
		CodeArbitrationFailed:  http.StatusBadGateway,
		CodeUnavailable:        http.StatusServiceUnavailable,
		CodeAuditWriteFailed:   http.StatusInternalServerError,
		CodeNotFound:           http.StatusNotFound,
		CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
