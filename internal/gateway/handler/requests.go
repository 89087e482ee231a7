package handler

import (
	"strings"

	"kbgate/internal/action"
	dErrors "kbgate/pkg/domain-errors"
)

const maxQueryLength = 5000

// ChatRequest is the wire format for POST /chat.
type ChatRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Validate enforces structural request rules before the pipeline runs.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "query is required")
	}
	if len(r.Query) > maxQueryLength {
		return dErrors.Newf(dErrors.CodeInvalidInput, "query exceeds %d characters", maxQueryLength)
	}
	return nil
}

// ActionRequest is the wire format for POST /actions.
type ActionRequest struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload"`
}

// ParsedKind validates and converts the action kind.
func (r ActionRequest) ParsedKind() (action.Kind, error) {
	switch kind := action.Kind(r.Kind); kind {
	case action.KindCreateTicket, action.KindScheduleMeeting, action.KindDraftDocument:
		return kind, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported action kind: %q", r.Kind)
	}
}
