package handler

import (
	"kbgate/internal/gateway"
	"kbgate/internal/policy"
)

// ChatResponse is the wire format returned by POST /chat. A denied request
// still returns 200: denial is a successful policy outcome.
type ChatResponse struct {
	Allowed        bool               `json:"allowed"`
	Answer         string             `json:"answer,omitempty"`
	Sources        []gateway.Fragment `json:"sources,omitempty"`
	DenialReason   string             `json:"denial_reason,omitempty"`
	DenialDetail   string             `json:"denial_detail,omitempty"`
	TraceID        string             `json:"trace_id"`
	ConversationID string             `json:"conversation_id,omitempty"`
}

// FromChatResult converts a pipeline result to the wire format.
func FromChatResult(result *gateway.ChatResult) ChatResponse {
	return ChatResponse{
		Allowed:        result.Allowed,
		Answer:         result.Answer,
		Sources:        result.Sources,
		DenialReason:   string(result.DenialReason),
		DenialDetail:   result.DenialDetail,
		TraceID:        result.TraceID,
		ConversationID: result.ConversationID,
	}
}

// ActionResponse is the wire format returned by POST /actions.
type ActionResponse struct {
	Allowed      bool   `json:"allowed"`
	Reference    string `json:"reference,omitempty"`
	DenialReason string `json:"denial_reason,omitempty"`
	DenialDetail string `json:"denial_detail,omitempty"`
	TraceID      string `json:"trace_id"`
}

// FromActionResult converts a pipeline result to the wire format.
func FromActionResult(result *gateway.ActionResult) ActionResponse {
	return ActionResponse{
		Allowed:      result.Allowed,
		Reference:    result.Reference,
		DenialReason: string(result.DenialReason),
		DenialDetail: result.DenialDetail,
		TraceID:      result.TraceID,
	}
}

// RoleResponse is one persona in the GET /iam/roles listing. Scope grants
// are public knowledge inside the organization; denials and ceilings are not
// exposed.
type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Scopes      []string `json:"scopes"`
}

// FromRoles converts policy roles to the listing wire format.
func FromRoles(roles []policy.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		scopes := make([]string, 0, len(role.GrantedScopes))
		for _, s := range role.GrantedScopes {
			scopes = append(scopes, string(s))
		}
		out = append(out, RoleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Scopes:      scopes,
		})
	}
	return out
}
