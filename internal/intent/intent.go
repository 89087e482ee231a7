// Package intent derives a coarse intent label from free-text queries.
//
// Classification is deterministic keyword matching against an ordered rule
// table; it never consults the policy store, the network, or any model. The
// result is an ephemeral value consumed by the capability resolver and
// discarded after the decision.
package intent

import (
	"strings"
	"unicode"
)

// Category is the closed enumeration of query intents.
type Category string

const (
	CategoryFinancial     Category = "FINANCIAL"
	CategoryCode          Category = "CODE"
	CategoryEmployeePII   Category = "EMPLOYEE_PII"
	CategoryPolicy        Category = "POLICY"
	CategoryGeneral       Category = "GENERAL"
	CategoryActionRequest Category = "ACTION_REQUEST"
)

// Intent is the classified purpose of a request. Created per-request and
// discarded after the capability decision.
type Intent struct {
	Category      Category
	RequiredScope string
	// MatchedTerm records which keyword triggered the classification,
	// surfaced in audit details.
	MatchedTerm string
}

// Classify derives an Intent from raw query text. The first rule whose
// keyword appears in the normalized text wins; unmatched queries fall back
// to GENERAL.
func Classify(query string) Intent {
	normalized := normalize(query)
	for _, rule := range rules {
		for _, term := range rule.Terms {
			if containsTerm(normalized, term) {
				return Intent{
					Category:      rule.Category,
					RequiredScope: rule.RequiredScope,
					MatchedTerm:   term,
				}
			}
		}
	}
	return Intent{Category: CategoryGeneral, RequiredScope: generalScope}
}

// normalize lower-cases the query and maps every non-alphanumeric rune to a
// space, so punctuation acts as a token boundary. "the function?" must match
// the term "function" exactly like "the function" does.
func normalize(query string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, query)
	return strings.Join(strings.Fields(mapped), " ")
}

// containsTerm matches a term on token boundaries. Multi-word terms match as
// phrases; single words must not match inside larger words ("profit" must
// not fire on "nonprofitable").
func containsTerm(normalized, term string) bool {
	idx := 0
	for {
		i := strings.Index(normalized[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		startOK := start == 0 || normalized[start-1] == ' '
		endOK := end == len(normalized) || normalized[end] == ' '
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}
