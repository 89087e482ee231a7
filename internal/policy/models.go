package policy

import "kbgate/internal/intent"

// Sensitivity levels for knowledge-base content. A role's ceiling bounds what
// it may ever retrieve.
const (
	SensitivityPublic       = 0
	SensitivityInternal     = 1
	SensitivityConfidential = 2
	SensitivityRestricted   = 3
)

// Scope is an opaque capability token. Scopes are equality-comparable and
// flat: the union of granted scopes determines what a role may do, with no
// hierarchy beyond explicit enumeration.
type Scope string

// Capability scopes known to the gateway.
const (
	ScopeReadFinancials Scope = "READ_FINANCIALS"
	ScopeReadCodebase   Scope = "READ_CODEBASE"
	ScopeReadPII        Scope = "READ_EMPLOYEE_PII"
	ScopeReadPolicy     Scope = "READ_POLICY_DOCS"
	ScopeReadGeneral    Scope = "READ_GENERAL"
	ScopeReadAudit      Scope = "READ_AUDIT"
	ScopeExecuteActions Scope = "EXECUTE_ACTIONS"
)

// Role is an immutable capability envelope for one persona. Instances are
// owned exclusively by the Store and never mutated after load.
type Role struct {
	ID          string
	Name        string
	Description string

	// GrantedScopes is the flat set of capabilities this role may exercise.
	GrantedScopes []Scope
	// DeniedScopes are explicit denials. A scope present here is refused
	// even if also granted (deny-overrides).
	DeniedScopes []Scope
	// GrantedCategories are the content categories retrieval may surface.
	GrantedCategories []string
	// ForbiddenCategories are intent categories this role may never pursue,
	// regardless of scopes.
	ForbiddenCategories []intent.Category

	// MaxSensitivity is the ordinal ceiling on content this role may see.
	MaxSensitivity int
}

// HasScope reports whether the scope is granted, honoring deny-overrides:
// an explicit denial wins over any grant for the same scope.
func (r Role) HasScope(s Scope) bool {
	for _, d := range r.DeniedScopes {
		if d == s {
			return false
		}
	}
	for _, g := range r.GrantedScopes {
		if g == s {
			return true
		}
	}
	return false
}

// ForbidsCategory reports whether the intent category is off-limits for this
// role.
func (r Role) ForbidsCategory(c intent.Category) bool {
	for _, f := range r.ForbiddenCategories {
		if f == c {
			return true
		}
	}
	return false
}
