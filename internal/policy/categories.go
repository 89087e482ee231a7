package policy

import "kbgate/internal/intent"

// categoryScopes maps each intent category to the scope that authorizes it.
// Kept here rather than in the intent package so the classifier stays free of
// policy imports.
var categoryScopes = map[intent.Category]Scope{
	intent.CategoryFinancial:     ScopeReadFinancials,
	intent.CategoryCode:          ScopeReadCodebase,
	intent.CategoryEmployeePII:   ScopeReadPII,
	intent.CategoryPolicy:        ScopeReadPolicy,
	intent.CategoryGeneral:       ScopeReadGeneral,
	intent.CategoryActionRequest: ScopeExecuteActions,
}

func scopeForCategory(c intent.Category) (Scope, bool) {
	s, ok := categoryScopes[c]
	return s, ok
}

// categoryFloor is the minimum sensitivity clearance a role needs before it
// may pursue a category at all. Employee PII is restricted-tier data;
// financial and code content is confidential-tier.
var categoryFloor = map[intent.Category]int{
	intent.CategoryEmployeePII: SensitivityRestricted,
	intent.CategoryFinancial:   SensitivityConfidential,
	intent.CategoryCode:        SensitivityConfidential,
}

// SensitivityFloor returns the minimum clearance required for a category.
// Categories without an entry are open at any clearance.
func SensitivityFloor(c intent.Category) int {
	return categoryFloor[c]
}
