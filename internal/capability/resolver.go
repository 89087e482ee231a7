package capability

import (
	"kbgate/internal/intent"
	"kbgate/internal/policy"
)

// Resolve decides whether role may pursue the classified intent.
//
// Check order (fail-fast, deny-overrides):
//  1. Forbidden intent category - the role may never pursue this topic.
//  2. Required scope - must be granted and not explicitly denied. An
//     explicit denial wins over a grant for the same scope, even when the
//     role definition is contradictory; contradictions are a policy-lint
//     concern, never a request-time failure.
//  3. Sensitivity floor - the category's minimum clearance must not exceed
//     the role's ceiling.
//
// Every path returns a Decision value; Resolve never errors.
func Resolve(role policy.Role, in intent.Intent) Decision {
	if role.ForbidsCategory(in.Category) {
		return Deny(ReasonForbiddenCategory,
			"your role is not permitted to make %s requests", in.Category)
	}

	required := policy.Scope(in.RequiredScope)
	if !role.HasScope(required) {
		return Deny(ReasonScopeMissing,
			"your role does not hold the %s capability", required)
	}

	if floor := policy.SensitivityFloor(in.Category); floor > role.MaxSensitivity {
		return Deny(ReasonSensitivityExceeded,
			"%s content requires clearance level %d; your role is cleared to %d",
			in.Category, floor, role.MaxSensitivity)
	}

	return Allow(BuildFilter(role))
}
