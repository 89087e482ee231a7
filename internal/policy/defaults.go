package policy

import "kbgate/internal/intent"

// DefaultRoles returns the compiled-in personas used when no policy file is
// configured. These mirror the organization's three standing personas.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:          "CHIEF_STRATEGY_OFFICER",
			Name:        "Eleanor Vance",
			Description: "Strategic Overview & Financial Analysis",
			GrantedScopes: []Scope{
				ScopeReadFinancials,
				ScopeReadPolicy,
				ScopeReadGeneral,
				ScopeReadAudit,
				ScopeExecuteActions,
			},
			GrantedCategories: []string{"financial", "strategy", "general"},
			ForbiddenCategories: []intent.Category{
				intent.CategoryCode,
				intent.CategoryEmployeePII,
			},
			MaxSensitivity: SensitivityConfidential,
		},
		{
			ID:          "HR_DIRECTOR",
			Name:        "Marcus Thorne",
			Description: "People & Culture Management",
			GrantedScopes: []Scope{
				ScopeReadPII,
				ScopeReadPolicy,
				ScopeReadGeneral,
				ScopeExecuteActions,
			},
			GrantedCategories: []string{"hr", "policy", "general"},
			ForbiddenCategories: []intent.Category{
				intent.CategoryCode,
				intent.CategoryFinancial,
			},
			// Holds the PII scope but not restricted-tier clearance, so PII
			// queries are denied on sensitivity rather than on scope.
			MaxSensitivity: SensitivityConfidential,
		},
		{
			ID:          "SR_DEVOPS_ENGINEER",
			Name:        "Sarah Chen",
			Description: "Infrastructure & Code Operations",
			GrantedScopes: []Scope{
				ScopeReadCodebase,
				ScopeReadGeneral,
				ScopeReadAudit,
				ScopeExecuteActions,
			},
			GrantedCategories: []string{"code", "technical", "general"},
			ForbiddenCategories: []intent.Category{
				intent.CategoryEmployeePII,
				intent.CategoryFinancial,
			},
			MaxSensitivity: SensitivityConfidential,
		},
	}
}
