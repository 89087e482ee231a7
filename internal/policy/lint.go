package policy

import "fmt"

// Problem describes one suspect spot in a policy set. Lint problems are
// warnings: the resolver applies deny-overrides at request time regardless,
// so a contradictory role is safe but almost certainly a configuration
// mistake worth surfacing at load.
type Problem struct {
	RoleID  string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("role %s: %s", p.RoleID, p.Message)
}

// Lint checks a policy set for contradictions and dead configuration. It
// never fails a request; run it at load and log the findings.
func Lint(roles []Role) []Problem {
	var problems []Problem
	for _, role := range roles {
		if len(role.GrantedScopes) == 0 {
			problems = append(problems, Problem{
				RoleID:  role.ID,
				Message: "no granted scopes; every request will be denied",
			})
		}
		for _, denied := range role.DeniedScopes {
			for _, granted := range role.GrantedScopes {
				if denied == granted {
					problems = append(problems, Problem{
						RoleID:  role.ID,
						Message: fmt.Sprintf("scope %s is both granted and denied; deny wins", denied),
					})
				}
			}
		}
		for _, category := range role.ForbiddenCategories {
			if scope, ok := scopeForCategory(category); ok && role.HasScope(scope) {
				problems = append(problems, Problem{
					RoleID:  role.ID,
					Message: fmt.Sprintf("category %s is forbidden but its scope %s is granted; the category check wins", category, scope),
				})
			}
		}
	}
	return problems
}
