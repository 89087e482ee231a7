package intent

// Rule binds a set of trigger terms to a category and the scope required to
// pursue it. Rules are evaluated in the order they appear here.
type Rule struct {
	Category      Category
	RequiredScope string
	Terms         []string
}

// generalScope is the capability required for queries that match no rule.
const generalScope = "READ_GENERAL"

// rules is the ordered classification table. Ordering is a deliberate
// tie-break for ambiguous queries and is covered by tests per category pair:
//
//	ACTION_REQUEST > EMPLOYEE_PII > FINANCIAL > CODE > POLICY
//
// Requests that propose an action must be gated as actions no matter what
// else they mention; PII outranks financial and code because its blast
// radius is regulatory; POLICY is the weakest specific category.
var rules = []Rule{
	{
		Category:      CategoryActionRequest,
		RequiredScope: "EXECUTE_ACTIONS",
		Terms: []string{
			"create a ticket", "create ticket", "file a ticket", "open a ticket",
			"schedule a meeting", "schedule meeting", "book a meeting",
			"draft a document", "draft a memo", "send an email",
		},
	},
	{
		Category:      CategoryEmployeePII,
		RequiredScope: "READ_EMPLOYEE_PII",
		Terms: []string{
			"salary", "salaries", "compensation", "ssn", "employee pii",
			"personal information", "employee", "headcount", "performance review",
		},
	},
	{
		Category:      CategoryFinancial,
		RequiredScope: "READ_FINANCIALS",
		Terms: []string{
			"revenue", "financial", "financials", "earnings", "profit",
			"ebitda", "budget", "quarterly results", "q1", "q2", "q3", "q4",
		},
	},
	{
		Category:      CategoryCode,
		RequiredScope: "READ_CODEBASE",
		Terms: []string{
			"code", "codebase", "function", "class", "repository", "repo",
			"api", "endpoint", "bug", "stack trace", "deployment", "pipeline",
		},
	},
	{
		Category:      CategoryPolicy,
		RequiredScope: "READ_POLICY_DOCS",
		Terms: []string{
			"policy", "policies", "handbook", "guideline", "guidelines",
			"compliance", "procedure", "onboarding",
		},
	},
}

// Rules exposes a copy of the table so the priority order stays a reviewable,
// testable artifact.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
