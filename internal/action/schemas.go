package action

// Kind identifies a supported action type.
type Kind string

const (
	KindCreateTicket    Kind = "CREATE_TICKET"
	KindScheduleMeeting Kind = "SCHEDULE_MEETING"
	KindDraftDocument   Kind = "DRAFT_DOCUMENT"
)

// RequiredScope is the capability every action payload must declare. The
// validator checks the declaration is present and correct as a second,
// independent gate behind the capability resolver.
const RequiredScope = "EXECUTE_ACTIONS"

// rawSchemas holds the JSON Schema (draft 2020-12) for each action kind.
// Structural rules only: types, required fields, enumerated value sets.
var rawSchemas = map[Kind]string{
	KindCreateTicket: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["required_scope", "title", "description", "assignee"],
		"additionalProperties": false,
		"properties": {
			"required_scope": {"const": "EXECUTE_ACTIONS"},
			"title": {"type": "string", "minLength": 5, "maxLength": 200},
			"description": {"type": "string", "minLength": 10},
			"priority": {"enum": ["Low", "Medium", "High", "Critical"], "default": "Medium"},
			"assignee": {"type": "string", "minLength": 1},
			"labels": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	KindScheduleMeeting: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["required_scope", "title", "participants", "suggested_times"],
		"additionalProperties": false,
		"properties": {
			"required_scope": {"const": "EXECUTE_ACTIONS"},
			"title": {"type": "string", "minLength": 3, "maxLength": 100},
			"participants": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"duration_minutes": {"type": "integer", "minimum": 15, "maximum": 480, "default": 60},
			"suggested_times": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		}
	}`,
	KindDraftDocument: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["required_scope", "title", "content"],
		"additionalProperties": false,
		"properties": {
			"required_scope": {"const": "EXECUTE_ACTIONS"},
			"title": {"type": "string", "minLength": 1},
			"content": {"type": "string", "minLength": 1},
			"document_type": {"enum": ["memo", "policy", "report", "email"], "default": "memo"}
		}
	}`,
}

// defaults applied after validation so downstream integrations always see a
// fully-populated payload.
var schemaDefaults = map[Kind]map[string]any{
	KindCreateTicket:    {"priority": "Medium", "labels": []any{}},
	KindScheduleMeeting: {"duration_minutes": 60},
	KindDraftDocument:   {"document_type": "memo"},
}
