// Package handler exposes the audit read surface: polling queries and a
// server-sent-events stream. Both require the caller's role to hold the
// audit-read capability, enforced through the gateway service like any other
// capability check.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kbgate/internal/audit"
	"kbgate/internal/gateway"
	dErrors "kbgate/pkg/domain-errors"
	"kbgate/pkg/platform/httputil"
	"kbgate/pkg/requestcontext"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// Handler wires the audit read endpoints to the audit log.
type Handler struct {
	log    *audit.Log
	gate   *gateway.Service
	logger *slog.Logger
}

// New constructs an audit handler.
func New(log *audit.Log, gate *gateway.Service, logger *slog.Logger) *Handler {
	return &Handler{log: log, gate: gate, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/logs", h.HandleQuery)
	r.Get("/audit/stream", h.HandleStream)
}

// HandleQuery handles GET /audit/logs?limit=&trace_id= requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := requestcontext.TraceID(ctx)

	roleID := requestcontext.RoleID(ctx)
	if roleID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-IAM-Role header is required"))
		return
	}
	if err := h.gate.AuthorizeAuditRead(ctx, roleID, traceID, audit.ActionAuditRead); err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit := defaultQueryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxQueryLimit {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "limit must be 1..%d", maxQueryLimit))
			return
		}
		limit = n
	}

	entries, err := h.log.Query(ctx, limit, r.URL.Query().Get("trace_id"))
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed", "trace_id", traceID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// HandleStream handles GET /audit/stream requests as server-sent events.
// Entries recorded after the connection opens are pushed in arrival order.
// If the client falls further behind than the backlog allows, the stream is
// ended with an overflow event rather than blocking recorders.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := requestcontext.TraceID(ctx)

	roleID := requestcontext.RoleID(ctx)
	if roleID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-IAM-Role header is required"))
		return
	}
	if err := h.gate.AuthorizeAuditRead(ctx, roleID, traceID, audit.ActionAuditStream); err != nil {
		httputil.WriteError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "streaming unsupported by connection"))
		return
	}

	sub := h.log.Subscribe(ctx)
	defer h.log.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for entry := range sub.C {
		payload, err := json.Marshal(entry)
		if err != nil {
			h.logger.ErrorContext(ctx, "audit stream marshal failed", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: audit\ndata: %s\n\n", entry.ID, payload); err != nil {
			return
		}
		flusher.Flush()
	}

	if errors.Is(sub.Err(), audit.ErrSubscriberOverflow) {
		_, _ = fmt.Fprint(w, "event: overflow\ndata: {\"error\":\"subscriber fell behind\"}\n\n")
		flusher.Flush()
	}
}
