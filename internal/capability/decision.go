// Package capability resolves whether a role may pursue a classified intent.
//
// Resolve is a pure decision function over (Role, Intent): no network, no
// model calls, no mutable state. A Deny decision must short-circuit before
// any retrieval or generation call is issued; the gateway service enforces
// that ordering.
package capability

import "fmt"

// ReasonCode classifies why a request was denied.
type ReasonCode string

const (
	ReasonForbiddenCategory   ReasonCode = "FORBIDDEN_CATEGORY"
	ReasonScopeMissing        ReasonCode = "SCOPE_MISSING"
	ReasonSensitivityExceeded ReasonCode = "SENSITIVITY_EXCEEDED"
)

// RetrievalFilter is the metadata predicate the search collaborator must
// apply to every candidate result before ranking. It is derived from the
// role, never persisted, and never exceeds the role's configured ceiling.
type RetrievalFilter struct {
	MaxSensitivity    int
	AllowedCategories []string
}

// Decision is the immutable outcome of capability resolution. Exactly one of
// the two shapes applies: allowed with a retrieval filter, or denied with a
// reason. Deny decisions are a successful policy outcome, not an error.
type Decision struct {
	Allowed bool
	Filter  RetrievalFilter

	Reason  ReasonCode
	Message string
}

// Allow constructs an allowing decision carrying the retrieval filter.
func Allow(filter RetrievalFilter) Decision {
	return Decision{Allowed: true, Filter: filter}
}

// Deny constructs a denying decision with a machine reason and a
// human-readable message for the requester and the audit trail.
func Deny(reason ReasonCode, format string, args ...any) Decision {
	return Decision{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
