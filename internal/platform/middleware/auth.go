package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"kbgate/pkg/requestcontext"
)

// RoleHeader carries the requester's IAM role. The role is authenticated by
// a collaborator upstream of this service; no other trust signal is assumed.
const RoleHeader = "X-IAM-Role"

// ExtractRole places the X-IAM-Role header value into the request context.
// Requests without a role still pass through; handlers that require a role
// reject them with a structured error.
func ExtractRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role := r.Header.Get(RoleHeader); role != "" {
			r = r.WithContext(requestcontext.WithRoleID(r.Context(), role))
		}
		next.ServeHTTP(w, r)
	})
}

// roleClaims is the JWT claim set issued by the upstream authenticator.
type roleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ExtractRoleFromJWT validates a bearer token signed by the upstream
// authenticator and places its role claim into the context. Used instead of
// ExtractRole when KBGATE_JWT_SIGNING_KEY is configured.
func ExtractRoleFromJWT(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(signingKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			if len(authHeader) <= len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.ParseWithClaims(authHeader[len(bearerPrefix):], &roleClaims{}, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return key, nil
			})
			if err != nil {
				logger.WarnContext(r.Context(), "bearer token rejected",
					"error", err,
					"trace_id", requestcontext.TraceID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
				return
			}

			if claims, ok := token.Claims.(*roleClaims); ok && claims.Role != "" {
				r = r.WithContext(requestcontext.WithRoleID(r.Context(), claims.Role))
			}
			next.ServeHTTP(w, r)
		})
	}
}
