package handler

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"kbgate/internal/gateway"
	"kbgate/internal/platform/metrics"
	dErrors "kbgate/pkg/domain-errors"
	"kbgate/pkg/platform/httputil"
	"kbgate/pkg/requestcontext"
)

// Handler wires gateway endpoints to the pipeline service.
type Handler struct {
	service *gateway.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a gateway handler with its dependencies.
func New(service *gateway.Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts gateway endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/chat", h.HandleChat)
	r.Post("/actions", h.HandleAction)
	r.Get("/iam/roles", h.HandleListRoles)
}

// HandleChat handles POST /chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := requestcontext.TraceID(ctx)
	start := time.Now()

	roleID := requestcontext.RoleID(ctx)
	if roleID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-IAM-Role header is required"))
		return
	}

	req, ok := httputil.DecodeJSON[ChatRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Chat(ctx, gateway.ChatRequest{
		RoleID:         roleID,
		Query:          req.Query,
		TraceID:        traceID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "chat pipeline failed",
			"trace_id", traceID,
			"role", roleID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		outcome := "allowed"
		if !result.Allowed {
			outcome = "denied"
		}
		h.metrics.Decisions.WithLabelValues(outcome).Inc()
	}

	h.logger.InfoContext(ctx, "chat handled",
		"trace_id", traceID,
		"role", roleID,
		"allowed", result.Allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromChatResult(result))
}

// HandleAction handles POST /actions requests.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := requestcontext.TraceID(ctx)

	roleID := requestcontext.RoleID(ctx)
	if roleID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "X-IAM-Role header is required"))
		return
	}

	req, ok := httputil.DecodeJSON[ActionRequest](w, r, h.logger)
	if !ok {
		return
	}
	kind, err := req.ParsedKind()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.ExecuteAction(ctx, gateway.ActionRequest{
		RoleID:  roleID,
		TraceID: traceID,
		Kind:    kind,
		Payload: req.Payload,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "action pipeline failed",
			"trace_id", traceID,
			"role", roleID,
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromActionResult(result))
}

// HandleListRoles handles GET /iam/roles requests.
func (h *Handler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.service.Roles()
	resp := FromRoles(roles)
	sort.Slice(resp, func(i, j int) bool { return resp[i].ID < resp[j].ID })
	httputil.WriteJSON(w, http.StatusOK, resp)
}
