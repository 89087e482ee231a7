// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them without importing net/http.
// Tests inject values directly to avoid running the middleware chain.
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	roleIDKey  struct{}
	traceIDKey struct{}
	timeKey    struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRoleID  = roleIDKey{}
	ContextKeyTraceID = traceIDKey{}
	ContextKeyTime    = timeKey{}
)

// RoleID retrieves the requester's IAM role identifier from the context.
// Returns "" if not set.
func RoleID(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyRoleID).(string); ok {
		return role
	}
	return ""
}

// WithRoleID injects a role identifier into the context.
func WithRoleID(ctx context.Context, roleID string) context.Context {
	return context.WithValue(ctx, ContextKeyRoleID, roleID)
}

// TraceID retrieves the per-request correlation identifier from the context.
// Returns "" if not set.
func TraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(ContextKeyTraceID).(string); ok {
		return traceID
	}
	return ""
}

// WithTraceID injects a trace identifier into the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ContextKeyTraceID, traceID)
}

// Now retrieves the request-scoped time from the context, falling back to
// time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time, useful for deterministic tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyTime, t)
}
