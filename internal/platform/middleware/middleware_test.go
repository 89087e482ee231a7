package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbgate/pkg/requestcontext"
)

func roleCapture(role *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*role = requestcontext.RoleID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestTraceID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	h := TraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.TraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(TraceIDHeader))
}

func TestTraceID_HonorsInbound(t *testing.T) {
	var seen string
	h := TraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "upstream-trace")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "upstream-trace", seen)
}

func TestExtractRole(t *testing.T) {
	var role string
	h := ExtractRole(roleCapture(&role))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RoleHeader, "HR_DIRECTOR")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "HR_DIRECTOR", role)

	role = ""
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, role, "missing header leaves the context empty")
}

func signToken(t *testing.T, key, role string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, roleClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestExtractRoleFromJWT(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	const key = "test-signing-key"

	var role string
	h := ExtractRoleFromJWT(key, logger)(roleCapture(&role))

	t.Run("valid token", func(t *testing.T) {
		role = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, "CHIEF_STRATEGY_OFFICER", jwt.SigningMethodHS256))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "CHIEF_STRATEGY_OFFICER", role)
	})

	t.Run("wrong key", func(t *testing.T) {
		role = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-key", "CHIEF_STRATEGY_OFFICER", jwt.SigningMethodHS256))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, role)
	})

	t.Run("expired token", func(t *testing.T) {
		role = ""
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, roleClaims{
			Role: "HR_DIRECTOR",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(key))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no token passes through without role", func(t *testing.T) {
		role = "stale"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, role)
	})
}
