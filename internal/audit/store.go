package audit

import "context"

// Store persists entries durably. Append must complete before a request is
// considered handled; implementations must retain insertion order.
type Store interface {
	// Append persists one entry. A failure is a PersistenceError: the
	// request that produced the entry must not be reported as handled.
	Append(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries, most recent first, optionally
	// filtered to one trace id.
	Recent(ctx context.Context, limit int, traceID string) ([]Entry, error)

	// LastID returns the highest entry ID already persisted, so a restarted
	// process keeps ids monotonic. Zero when the store is empty.
	LastID(ctx context.Context) (uint64, error)
}
