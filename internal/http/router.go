// Package httpapi assembles the HTTP surface. It is a thin layer: routing and
// middleware only, with business logic behind the handler packages.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "kbgate/internal/audit/handler"
	gatewayhandler "kbgate/internal/gateway/handler"
	"kbgate/internal/platform/middleware"
)

// RouterConfig carries the pieces the router mounts.
type RouterConfig struct {
	Gateway *gatewayhandler.Handler
	Audit   *audithandler.Handler
	Logger  *slog.Logger

	// JWTSigningKey switches role extraction from the X-IAM-Role header to
	// bearer tokens when set.
	JWTSigningKey string
}

// NewRouter wires all public endpoints with the standard middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceID)
	if cfg.JWTSigningKey != "" {
		r.Use(middleware.ExtractRoleFromJWT(cfg.JWTSigningKey, cfg.Logger))
	} else {
		r.Use(middleware.ExtractRole)
	}
	r.Use(middleware.RequestLogger(cfg.Logger))

	cfg.Gateway.Register(r)
	cfg.Audit.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
