package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbgate/internal/intent"
	"kbgate/internal/policy"
)

func financeRole() policy.Role {
	return policy.Role{
		ID:                  "FINANCE",
		GrantedScopes:       []policy.Scope{policy.ScopeReadFinancials, policy.ScopeReadGeneral},
		GrantedCategories:   []string{"FINANCIAL", "GENERAL"},
		ForbiddenCategories: []intent.Category{intent.CategoryCode},
		MaxSensitivity:      policy.SensitivityConfidential,
	}
}

func financialIntent() intent.Intent {
	return intent.Intent{
		Category:      intent.CategoryFinancial,
		RequiredScope: string(policy.ScopeReadFinancials),
	}
}

func TestResolve_Allow(t *testing.T) {
	d := Resolve(financeRole(), financialIntent())

	require.True(t, d.Allowed)
	assert.Empty(t, d.Reason)
	assert.Equal(t, policy.SensitivityConfidential, d.Filter.MaxSensitivity)
	assert.Equal(t, []string{"FINANCIAL", "GENERAL"}, d.Filter.AllowedCategories)
}

func TestResolve_ForbiddenCategory(t *testing.T) {
	d := Resolve(financeRole(), intent.Intent{
		Category:      intent.CategoryCode,
		RequiredScope: string(policy.ScopeReadCodebase),
	})

	require.False(t, d.Allowed)
	assert.Equal(t, ReasonForbiddenCategory, d.Reason)
	assert.Contains(t, d.Message, "CODE")
}

func TestResolve_ScopeMissing(t *testing.T) {
	d := Resolve(financeRole(), intent.Intent{
		Category:      intent.CategoryPolicy,
		RequiredScope: string(policy.ScopeReadPolicy),
	})

	require.False(t, d.Allowed)
	assert.Equal(t, ReasonScopeMissing, d.Reason)
	assert.Contains(t, d.Message, "READ_POLICY_DOCS")
}

func TestResolve_DeniedScopeWinsOverGrant(t *testing.T) {
	role := financeRole()
	role.DeniedScopes = []policy.Scope{policy.ScopeReadFinancials}

	d := Resolve(role, financialIntent())

	require.False(t, d.Allowed)
	assert.Equal(t, ReasonScopeMissing, d.Reason)
}

func TestResolve_SensitivityExceeded(t *testing.T) {
	// PII content carries a restricted-tier floor; a confidential-tier role
	// holding the scope must still be denied.
	role := policy.Role{
		ID:                "UNDERCLEARED",
		GrantedScopes:     []policy.Scope{policy.ScopeReadPII},
		GrantedCategories: []string{"EMPLOYEE_PII"},
		MaxSensitivity:    policy.SensitivityConfidential,
	}

	d := Resolve(role, intent.Intent{
		Category:      intent.CategoryEmployeePII,
		RequiredScope: string(policy.ScopeReadPII),
	})

	require.False(t, d.Allowed)
	assert.Equal(t, ReasonSensitivityExceeded, d.Reason)
	assert.Contains(t, d.Message, "clearance level 3")
}

func TestResolve_CategoryCheckPrecedesScopeCheck(t *testing.T) {
	// A role both missing the scope and forbidding the category must report
	// the category denial: the stronger prohibition wins the audit detail.
	role := policy.Role{
		ID:                  "DOUBLY_BLOCKED",
		GrantedScopes:       []policy.Scope{policy.ScopeReadGeneral},
		ForbiddenCategories: []intent.Category{intent.CategoryFinancial},
		MaxSensitivity:      policy.SensitivityPublic,
	}

	d := Resolve(role, financialIntent())

	require.False(t, d.Allowed)
	assert.Equal(t, ReasonForbiddenCategory, d.Reason)
}

func TestResolve_GeneralIntentHasNoFloor(t *testing.T) {
	role := policy.Role{
		ID:                "PUBLIC_ONLY",
		GrantedScopes:     []policy.Scope{policy.ScopeReadGeneral},
		GrantedCategories: []string{"GENERAL"},
		MaxSensitivity:    policy.SensitivityPublic,
	}

	d := Resolve(role, intent.Intent{
		Category:      intent.CategoryGeneral,
		RequiredScope: string(policy.ScopeReadGeneral),
	})

	assert.True(t, d.Allowed)
	assert.Equal(t, policy.SensitivityPublic, d.Filter.MaxSensitivity)
}

func TestBuildFilter_MatchesRoleCeiling(t *testing.T) {
	// The filter ceiling is always exactly the role ceiling, whatever the
	// intent that produced the decision.
	for _, ceiling := range []int{
		policy.SensitivityPublic,
		policy.SensitivityInternal,
		policy.SensitivityConfidential,
		policy.SensitivityRestricted,
	} {
		role := policy.Role{
			ID:                "R",
			GrantedScopes:     []policy.Scope{policy.ScopeReadGeneral},
			GrantedCategories: []string{"GENERAL"},
			MaxSensitivity:    ceiling,
		}
		assert.Equal(t, ceiling, BuildFilter(role).MaxSensitivity)
	}
}

func TestBuildFilter_CopiesCategories(t *testing.T) {
	role := financeRole()
	filter := BuildFilter(role)

	filter.AllowedCategories[0] = "MUTATED"
	assert.Equal(t, "FINANCIAL", role.GrantedCategories[0],
		"filter must not alias the role's category slice")
}
