package audit

import "time"

// Status is the terminal outcome an entry records.
type Status string

const (
	StatusAllowed Status = "ALLOWED"
	StatusDenied  Status = "DENIED"
	StatusError   Status = "ERROR"
)

// Entry is one immutable record in the append-only audit log. The ID is
// assigned by the Log at record time and is strictly increasing across
// concurrent recorders; entries are never edited or deleted after creation.
type Entry struct {
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorRole string    `json:"actor_role"`
	TraceID   string    `json:"trace_id"`
	Action    string    `json:"action"`
	Status    Status    `json:"status"`
	Details   string    `json:"details"`
}

// Template carries the caller-supplied fields of an entry. ID and Timestamp
// are assigned by the Log.
type Template struct {
	ActorRole string
	TraceID   string
	Action    string
	Status    Status
	Details   string
}

// Actions recorded by the gateway pipeline.
const (
	ActionQueryResolved = "query_resolved"
	ActionRetrieval     = "retrieval"
	ActionGeneration    = "generation"
	ActionValidated     = "action_validated"
	ActionExecuted      = "action_executed"
	ActionAuditRead     = "audit_read"
	ActionAuditStream   = "audit_stream"
)
