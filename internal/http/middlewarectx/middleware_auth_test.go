package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxai/account-service/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewMaker("test-secret", time.Hour)
	logger := newNoopLogger()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		assert.Equal(t, "user@example.com", r.Context().Value(Email))
		assert.Equal(t, "user", r.Context().Value(Role))
		assert.Equal(t, "uid-123", r.Context().Value(AccountUID))
		w.WriteHeader(http.StatusOK)
	})

	handler := JWTMiddleware(maker, logger)(next)

	t.Run("valid token populates context", func(t *testing.T) {
		nextCalled = false
		token, err := maker.GenerateToken("user@example.com", "user", "uid-123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		nextCalled = false
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		nextCalled = false
		other := jwt.NewMaker("another-secret", time.Hour)
		token, err := other.GenerateToken("user@example.com", "user", "uid-123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		nextCalled = false
		expired := jwt.NewMaker("test-secret", -time.Minute)
		token, err := expired.GenerateToken("user@example.com", "user", "uid-123")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
