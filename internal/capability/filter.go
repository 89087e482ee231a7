package capability

import "kbgate/internal/policy"

// BuildFilter translates a role's envelope into the retrieval predicate
// passed to the search collaborator. Pure transformation: the emitted filter
// can never exceed the sensitivity ceiling or category set encoded in the
// role, so unauthorized content is never scored, ranked, or surfaced even
// transiently.
func BuildFilter(role policy.Role) RetrievalFilter {
	return RetrievalFilter{
		MaxSensitivity:    role.MaxSensitivity,
		AllowedCategories: append([]string(nil), role.GrantedCategories...),
	}
}
