package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kbgate/pkg/domain-errors"
)

func validTicket() map[string]any {
	return map[string]any{
		"required_scope": "EXECUTE_ACTIONS",
		"title":          "Login service outage",
		"description":    "Users cannot authenticate since the last deploy.",
		"assignee":       "sre-oncall",
	}
}

func TestValidator_CreateTicket(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	got, err := v.Validate(KindCreateTicket, validTicket())
	require.NoError(t, err)

	assert.Equal(t, "Medium", got["priority"], "omitted priority takes the default")
	assert.Equal(t, []any{}, got["labels"])
	assert.Equal(t, "Login service outage", got["title"])
}

func TestValidator_CreateTicketRejections(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"missing required_scope", func(m map[string]any) { delete(m, "required_scope") }},
		{"wrong required_scope", func(m map[string]any) { m["required_scope"] = "READ_GENERAL" }},
		{"title too short", func(m map[string]any) { m["title"] = "x" }},
		{"description too short", func(m map[string]any) { m["description"] = "short" }},
		{"missing assignee", func(m map[string]any) { delete(m, "assignee") }},
		{"unknown priority", func(m map[string]any) { m["priority"] = "Urgent" }},
		{"unexpected field", func(m map[string]any) { m["severity"] = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validTicket()
			tt.mutate(payload)

			_, err := v.Validate(KindCreateTicket, payload)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestValidator_ScheduleMeeting(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	got, err := v.Validate(KindScheduleMeeting, map[string]any{
		"required_scope":  "EXECUTE_ACTIONS",
		"title":           "Q3 planning",
		"participants":    []any{"eleanor", "marcus"},
		"suggested_times": []any{"2026-09-02T10:00:00Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, 60, got["duration_minutes"], "omitted duration takes the default")

	_, err = v.Validate(KindScheduleMeeting, map[string]any{
		"required_scope":  "EXECUTE_ACTIONS",
		"title":           "Q3 planning",
		"participants":    []any{},
		"suggested_times": []any{"2026-09-02T10:00:00Z"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "participants")
}

func TestValidator_DraftDocument(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	got, err := v.Validate(KindDraftDocument, map[string]any{
		"required_scope": "EXECUTE_ACTIONS",
		"title":          "Incident summary",
		"content":        "Timeline and remediation steps.",
	})
	require.NoError(t, err)
	assert.Equal(t, "memo", got["document_type"])

	_, err = v.Validate(KindDraftDocument, map[string]any{
		"required_scope": "EXECUTE_ACTIONS",
		"title":          "Incident summary",
		"content":        "Timeline and remediation steps.",
		"document_type":  "tweet",
	})
	assert.Error(t, err)
}

func TestValidator_UnknownKind(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.Validate(Kind("DELETE_DATABASE"), validTicket())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "unknown action kind")
}

func TestValidator_NilPayload(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.Validate(KindCreateTicket, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestValidator_DoesNotMutateInput(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	payload := validTicket()
	_, err = v.Validate(KindCreateTicket, payload)
	require.NoError(t, err)

	assert.NotContains(t, payload, "priority", "defaults go on the returned copy, not the input")
}

func TestValidator_Kinds(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Kind{KindCreateTicket, KindScheduleMeeting, KindDraftDocument}, v.Kinds())
}
