// Package gateway orchestrates the request pipeline: classify, resolve,
// retrieve, generate, validate, audit. The capability decision happens
// before any collaborator call, and every terminal outcome of a request
// produces exactly one audit entry.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kbgate/internal/action"
	"kbgate/internal/audit"
	"kbgate/internal/capability"
	"kbgate/internal/intent"
	"kbgate/internal/policy"
	dErrors "kbgate/pkg/domain-errors"
)

// ChatRequest is one inbound knowledge-base query.
type ChatRequest struct {
	RoleID         string
	Query          string
	TraceID        string
	ConversationID string
}

// ChatResult is the outcome of a chat request. Denied is a successful policy
// outcome, not an error: Answer is empty and DenialReason is set.
type ChatResult struct {
	Allowed      bool
	Answer       string
	Sources      []Fragment
	DenialReason capability.ReasonCode
	DenialDetail string
	TraceID      string

	// ConversationID echoes the caller's opaque conversation handle; the
	// gateway stores no chat history.
	ConversationID string
}

// ActionRequest is one inbound structured action proposal.
type ActionRequest struct {
	RoleID  string
	TraceID string
	Kind    action.Kind
	Payload map[string]any
}

// ActionResult reports a validated-and-delegated action.
type ActionResult struct {
	Allowed      bool
	Reference    string
	DenialReason capability.ReasonCode
	DenialDetail string
	TraceID      string
}

// Service wires the pure decision components to the external collaborators
// and the audit pipeline.
type Service struct {
	policies  *policy.Store
	validator *action.Validator
	log       *audit.Log

	searcher     Searcher
	generator    Generator
	integrations Integrations

	logger *slog.Logger

	searchTimeout   time.Duration
	generateTimeout time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTimeouts bounds the external collaborator calls.
func WithTimeouts(search, generate time.Duration) Option {
	return func(s *Service) {
		if search > 0 {
			s.searchTimeout = search
		}
		if generate > 0 {
			s.generateTimeout = generate
		}
	}
}

// New constructs the gateway service. All dependencies are required except
// options.
func New(
	policies *policy.Store,
	validator *action.Validator,
	log *audit.Log,
	searcher Searcher,
	generator Generator,
	integrations Integrations,
	opts ...Option,
) (*Service, error) {
	if policies == nil {
		return nil, fmt.Errorf("policy store is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("action validator is required")
	}
	if log == nil {
		return nil, fmt.Errorf("audit log is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if integrations == nil {
		return nil, fmt.Errorf("integrations port is required")
	}

	s := &Service{
		policies:        policies,
		validator:       validator,
		log:             log,
		searcher:        searcher,
		generator:       generator,
		integrations:    integrations,
		searchTimeout:   5 * time.Second,
		generateTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat runs the full pipeline for a free-text query.
//
// A Deny decision short-circuits before any retrieval or generation call and
// is itself the successful result. The decision, once reached, is always
// recorded: the audit write runs on a cancellation-immune context.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	role, err := s.policies.Get(req.RoleID)
	if err != nil {
		s.recordError(ctx, req.RoleID, req.TraceID, audit.ActionQueryResolved,
			fmt.Sprintf("unknown role %q", req.RoleID))
		return nil, err
	}

	in := intent.Classify(req.Query)
	decision := capability.Resolve(role, in)

	if !decision.Allowed {
		if err := s.record(ctx, audit.Template{
			ActorRole: role.ID,
			TraceID:   req.TraceID,
			Action:    audit.ActionQueryResolved,
			Status:    audit.StatusDenied,
			Details:   fmt.Sprintf("intent=%s term=%q reason=%s: %s", in.Category, in.MatchedTerm, decision.Reason, decision.Message),
		}); err != nil {
			return nil, err
		}
		return &ChatResult{
			Allowed:        false,
			DenialReason:   decision.Reason,
			DenialDetail:   decision.Message,
			TraceID:        req.TraceID,
			ConversationID: req.ConversationID,
		}, nil
	}

	fragments, err := s.search(ctx, req.Query, decision.Filter)
	if err != nil {
		s.recordError(ctx, role.ID, req.TraceID, audit.ActionRetrieval, err.Error())
		return nil, err
	}

	answer, err := s.generate(ctx, req.Query, fragments)
	if err != nil {
		s.recordError(ctx, role.ID, req.TraceID, audit.ActionGeneration, err.Error())
		return nil, err
	}

	if err := s.record(ctx, audit.Template{
		ActorRole: role.ID,
		TraceID:   req.TraceID,
		Action:    audit.ActionQueryResolved,
		Status:    audit.StatusAllowed,
		Details:   fmt.Sprintf("intent=%s term=%q scope=%s sources=%d", in.Category, in.MatchedTerm, in.RequiredScope, len(fragments)),
	}); err != nil {
		return nil, err
	}

	return &ChatResult{
		Allowed:        true,
		Answer:         answer,
		Sources:        fragments,
		TraceID:        req.TraceID,
		ConversationID: req.ConversationID,
	}, nil
}

// ExecuteAction gates, validates, and delegates a structured action. The
// capability resolver and the schema validator are deliberately separate
// gates; a payload must pass both.
func (s *Service) ExecuteAction(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	role, err := s.policies.Get(req.RoleID)
	if err != nil {
		s.recordError(ctx, req.RoleID, req.TraceID, audit.ActionValidated,
			fmt.Sprintf("unknown role %q", req.RoleID))
		return nil, err
	}

	decision := capability.Resolve(role, intent.Intent{
		Category:      intent.CategoryActionRequest,
		RequiredScope: action.RequiredScope,
	})
	if !decision.Allowed {
		if err := s.record(ctx, audit.Template{
			ActorRole: role.ID,
			TraceID:   req.TraceID,
			Action:    audit.ActionValidated,
			Status:    audit.StatusDenied,
			Details:   fmt.Sprintf("kind=%s reason=%s: %s", req.Kind, decision.Reason, decision.Message),
		}); err != nil {
			return nil, err
		}
		return &ActionResult{
			Allowed:      false,
			DenialReason: decision.Reason,
			DenialDetail: decision.Message,
			TraceID:      req.TraceID,
		}, nil
	}

	normalized, err := s.validator.Validate(req.Kind, req.Payload)
	if err != nil {
		s.recordError(ctx, role.ID, req.TraceID, audit.ActionValidated, err.Error())
		return nil, err
	}

	if err := s.record(ctx, audit.Template{
		ActorRole: role.ID,
		TraceID:   req.TraceID,
		Action:    audit.ActionValidated,
		Status:    audit.StatusAllowed,
		Details:   fmt.Sprintf("kind=%s", req.Kind),
	}); err != nil {
		return nil, err
	}

	reference, err := s.integrations.Execute(ctx, req.Kind, normalized)
	if err != nil {
		s.recordError(ctx, role.ID, req.TraceID, audit.ActionExecuted, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "integration failed")
	}

	if err := s.record(ctx, audit.Template{
		ActorRole: role.ID,
		TraceID:   req.TraceID,
		Action:    audit.ActionExecuted,
		Status:    audit.StatusAllowed,
		Details:   fmt.Sprintf("kind=%s reference=%s", req.Kind, reference),
	}); err != nil {
		return nil, err
	}

	return &ActionResult{Allowed: true, Reference: reference, TraceID: req.TraceID}, nil
}

// Roles lists configured personas for the IAM listing endpoint.
func (s *Service) Roles() []policy.Role {
	return s.policies.All()
}

// AuthorizeAuditRead gates access to the audit surface: reading audit data
// is a capability like any other.
func (s *Service) AuthorizeAuditRead(ctx context.Context, roleID, traceID, auditAction string) error {
	role, err := s.policies.Get(roleID)
	if err != nil {
		return err
	}
	if !role.HasScope(policy.ScopeReadAudit) {
		if recErr := s.record(ctx, audit.Template{
			ActorRole: role.ID,
			TraceID:   traceID,
			Action:    auditAction,
			Status:    audit.StatusDenied,
			Details:   fmt.Sprintf("reason=%s: audit access requires %s", capability.ReasonScopeMissing, policy.ScopeReadAudit),
		}); recErr != nil {
			return recErr
		}
		return dErrors.New(dErrors.CodeForbidden, "your role may not read audit data")
	}
	return nil
}

func (s *Service) search(ctx context.Context, query string, filter capability.RetrievalFilter) ([]Fragment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()
	fragments, err := s.searcher.Search(ctx, query, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "search collaborator timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "search collaborator failed")
	}
	return fragments, nil
}

func (s *Service) generate(ctx context.Context, query string, fragments []Fragment) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()
	answer, err := s.generator.Generate(ctx, query, fragments)
	if err != nil {
		if ctx.Err() != nil {
			return "", dErrors.Wrap(err, dErrors.CodeTimeout, "generation collaborator timed out")
		}
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "generation collaborator failed")
	}
	return answer, nil
}

// record appends one audit entry; failure is fatal for the request.
func (s *Service) record(ctx context.Context, tmpl audit.Template) error {
	if _, err := s.log.Record(ctx, tmpl); err != nil {
		return err
	}
	return nil
}

// recordError best-effort appends an ERROR entry for a request that already
// failed. The original failure is what the caller reports; a second audit
// failure is logged and escalated via metrics inside the audit log itself.
func (s *Service) recordError(ctx context.Context, roleID, traceID, auditAction, details string) {
	if _, err := s.log.Record(ctx, audit.Template{
		ActorRole: roleID,
		TraceID:   traceID,
		Action:    auditAction,
		Status:    audit.StatusError,
		Details:   details,
	}); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to record error audit entry",
			"trace_id", traceID, "error", err)
	}
}
