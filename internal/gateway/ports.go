package gateway

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Searcher,Generator,Integrations

import (
	"context"

	"kbgate/internal/action"
	"kbgate/internal/capability"
)

// Fragment is one scored piece of retrieved content. The search collaborator
// guarantees every fragment already satisfies the retrieval filter.
type Fragment struct {
	Source      string  `json:"source"`
	Content     string  `json:"content"`
	Category    string  `json:"category"`
	Sensitivity int     `json:"sensitivity"`
	Score       float64 `json:"score"`
}

// Searcher is the external search collaborator. It must apply the filter to
// every candidate before ranking so unauthorized content is never scored.
type Searcher interface {
	Search(ctx context.Context, query string, filter capability.RetrievalFilter) ([]Fragment, error)
}

// Generator is the external text-completion collaborator. Called only after
// an Allow decision.
type Generator interface {
	Generate(ctx context.Context, query string, fragments []Fragment) (string, error)
}

// Integrations executes validated action payloads in external systems
// (ticketing, calendars, document stores). Execution never happens
// in-process.
type Integrations interface {
	Execute(ctx context.Context, kind action.Kind, payload map[string]any) (string, error)
}
