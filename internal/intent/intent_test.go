package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		wantCategory  Category
		wantScope     string
	}{
		{"financial summary", "Summarize Q3 revenue", CategoryFinancial, "READ_FINANCIALS"},
		{"code lookup", "show me the authentication function", CategoryCode, "READ_CODEBASE"},
		{"pii query", "employee compensation breakdown", CategoryEmployeePII, "READ_EMPLOYEE_PII"},
		{"policy query", "what does the travel policy say", CategoryPolicy, "READ_POLICY_DOCS"},
		{"action request", "please create a ticket for the login outage", CategoryActionRequest, "EXECUTE_ACTIONS"},
		{"no match falls back to general", "what is on the lunch menu today", CategoryGeneral, "READ_GENERAL"},
		{"case insensitive", "SUMMARIZE Q3 REVENUE", CategoryFinancial, "READ_FINANCIALS"},
		{"extra whitespace", "  summarize   q3   revenue  ", CategoryFinancial, "READ_FINANCIALS"},
		{"trailing question mark", "show me the authentication function?", CategoryCode, "READ_CODEBASE"},
		{"trailing exclamation", "summarize the travel policy!", CategoryPolicy, "READ_POLICY_DOCS"},
		{"keyword before comma", "what was our total revenue, year over year", CategoryFinancial, "READ_FINANCIALS"},
		{"keyword in quotes", `explain the "compensation" process`, CategoryEmployeePII, "READ_EMPLOYEE_PII"},
		{"keyword in parentheses", "the quarterly numbers (ebitda) please", CategoryFinancial, "READ_FINANCIALS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.query)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantScope, got.RequiredScope)
		})
	}
}

func TestClassify_TermBoundaries(t *testing.T) {
	// Single-word terms must not fire inside larger words.
	got := Classify("the nonprofitable venture")
	assert.Equal(t, CategoryGeneral, got.Category, "profit inside nonprofitable must not match")

	got = Classify("what was our profit last year")
	assert.Equal(t, CategoryFinancial, got.Category)
}

// TestClassify_PriorityOrder pins the designed tie-break for queries matching
// multiple categories: ACTION_REQUEST > EMPLOYEE_PII > FINANCIAL > CODE >
// POLICY. One test per adjacent and notable category pair.
func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Category
	}{
		{"action beats pii", "create a ticket about employee salary data", CategoryActionRequest},
		{"action beats financial", "schedule a meeting to review q3 revenue", CategoryActionRequest},
		{"action beats code", "create a ticket for the api outage", CategoryActionRequest},
		{"pii beats financial", "employee salary versus revenue", CategoryEmployeePII},
		{"pii beats code", "which function stores employee ssn", CategoryEmployeePII},
		{"financial beats code", "revenue projection function in the forecast", CategoryFinancial},
		{"financial beats policy", "financial reporting policy", CategoryFinancial},
		{"code beats policy", "the code review policy", CategoryCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query).Category)
		})
	}
}

// TestRules_TableShape guards the rule table as a reviewable artifact: the
// category order is part of the system contract.
func TestRules_TableShape(t *testing.T) {
	table := Rules()
	require.NotEmpty(t, table)

	wantOrder := []Category{
		CategoryActionRequest,
		CategoryEmployeePII,
		CategoryFinancial,
		CategoryCode,
		CategoryPolicy,
	}
	require.Len(t, table, len(wantOrder))
	for i, rule := range table {
		assert.Equal(t, wantOrder[i], rule.Category, "rule %d out of priority order", i)
		assert.NotEmpty(t, rule.RequiredScope)
		assert.NotEmpty(t, rule.Terms)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	// Same input, same output, every time.
	first := Classify("summarize q3 revenue and the codebase")
	for _i := 0; _i < 20; _i++ {
		assert.Equal(t, first, Classify("summarize q3 revenue and the codebase"))
	}
}
