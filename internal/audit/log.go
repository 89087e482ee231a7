// Package audit implements the append-only decision log.
//
// Record is the single write path: it serializes id assignment and the
// durable append behind one writer mutex, then fans the entry out to live
// subscribers through bounded per-subscriber queues. A slow subscriber is
// disconnected with an overflow signal; producers never block on fan-out.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	dErrors "kbgate/pkg/domain-errors"
	"kbgate/pkg/requestcontext"
)

// ErrSubscriberOverflow is reported by a Subscription whose backlog filled
// faster than the subscriber drained it.
var ErrSubscriberOverflow = errors.New("audit subscriber fell behind and was disconnected")

// DefaultBacklog bounds a subscriber's queue when no explicit size is given.
const DefaultBacklog = 256

// Subscription is one live, order-preserving audit feed. C is closed when
// the subscriber is disconnected; Err reports why.
type Subscription struct {
	C <-chan Entry

	ch     chan Entry
	once   sync.Once
	err    error
	cancel func()
}

// Err reports why the subscription ended: nil after a clean Unsubscribe or
// log close, ErrSubscriberOverflow if the subscriber fell behind.
func (s *Subscription) Err() error { return s.err }

func (s *Subscription) close(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.ch)
	})
}

// Log is the audit pipeline: synchronous durable append, asynchronous
// fan-out. It is the only shared-mutable-state component in the gateway;
// all writes are serialized through mu.
type Log struct {
	store   Store
	logger  *slog.Logger
	backlog int

	onRecord      func(Entry)
	onOverflow    func()
	onPersistFail func()

	mu     sync.Mutex
	nextID uint64
	subs   map[*Subscription]struct{}
	closed bool
}

// Option configures the Log.
type Option func(*Log)

// WithLogger sets a logger for overflow and persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithBacklog bounds each subscriber's queue.
func WithBacklog(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.backlog = n
		}
	}
}

// WithRecordHook installs a callback invoked after every successful record,
// used for metrics.
func WithRecordHook(fn func(Entry)) Option {
	return func(l *Log) { l.onRecord = fn }
}

// WithOverflowHook installs a callback invoked when a subscriber is
// disconnected for falling behind.
func WithOverflowHook(fn func()) Option {
	return func(l *Log) { l.onOverflow = fn }
}

// WithPersistFailHook installs a callback invoked when a durable append
// fails, for process-level alerting: audit durability is the core guarantee.
func WithPersistFailHook(fn func()) Option {
	return func(l *Log) { l.onPersistFail = fn }
}

// NewLog creates the audit log on top of a durable store. Ids continue from
// the store's high-water mark so restarts keep them monotonic.
func NewLog(ctx context.Context, store Store, opts ...Option) (*Log, error) {
	lastID, err := store.LastID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit store unavailable")
	}
	l := &Log{
		store:   store,
		backlog: DefaultBacklog,
		nextID:  lastID,
		subs:    make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Record assigns the next monotonic id and timestamp, appends the entry to
// the durable store, and fans it out to live subscribers. The append is
// synchronous: if it fails, the entry was not recorded and the caller's
// request must fail. Fan-out never blocks; a subscriber whose queue is full
// is disconnected with ErrSubscriberOverflow.
//
// Record ignores cancellation on ctx for the append itself: a decision,
// once reached, is always recorded even if the request was abandoned.
func (l *Log) Record(ctx context.Context, tmpl Template) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Entry{}, dErrors.New(dErrors.CodeUnavailable, "audit log is closed")
	}

	entry := Entry{
		ID:        l.nextID + 1,
		Timestamp: requestcontext.Now(ctx),
		ActorRole: tmpl.ActorRole,
		TraceID:   tmpl.TraceID,
		Action:    tmpl.Action,
		Status:    tmpl.Status,
		Details:   tmpl.Details,
	}

	if err := l.store.Append(context.WithoutCancel(ctx), entry); err != nil {
		if l.onPersistFail != nil {
			l.onPersistFail()
		}
		if l.logger != nil {
			l.logger.ErrorContext(ctx, "CRITICAL: audit append failed",
				"action", entry.Action,
				"trace_id", entry.TraceID,
				"error", err,
			)
		}
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "audit persistence failed")
	}
	l.nextID = entry.ID

	for sub := range l.subs {
		select {
		case sub.ch <- entry:
		default:
			delete(l.subs, sub)
			sub.close(ErrSubscriberOverflow)
			if l.onOverflow != nil {
				l.onOverflow()
			}
			if l.logger != nil {
				l.logger.WarnContext(ctx, "audit subscriber disconnected: backlog full")
			}
		}
	}

	if l.onRecord != nil {
		l.onRecord(entry)
	}
	return entry, nil
}

// Subscribe opens a live feed of entries recorded after this call. The feed
// preserves arrival order. It ends when ctx is cancelled, the log closes, or
// the subscriber falls more than the backlog behind.
func (l *Log) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{ch: make(chan Entry, l.backlog)}
	sub.C = sub.ch

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		sub.close(nil)
		return sub
	}
	l.subs[sub] = struct{}{}
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { l.unsubscribe(sub, ctx.Err()) })
	sub.cancel = func() { stop() }
	return sub
}

// Unsubscribe detaches the subscription and closes its channel.
func (l *Log) Unsubscribe(sub *Subscription) {
	if sub.cancel != nil {
		sub.cancel()
	}
	l.unsubscribe(sub, nil)
}

func (l *Log) unsubscribe(sub *Subscription, cause error) {
	l.mu.Lock()
	_, present := l.subs[sub]
	delete(l.subs, sub)
	l.mu.Unlock()
	if present {
		if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
			cause = nil
		}
		sub.close(cause)
	}
}

// Query returns up to limit entries, most recent first, optionally filtered
// to a single trace id.
func (l *Log) Query(ctx context.Context, limit int, traceID string) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries, err := l.store.Recent(ctx, limit, traceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit query failed")
	}
	return entries, nil
}

// Close disconnects all subscribers and refuses further records.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for sub := range l.subs {
		delete(l.subs, sub)
		sub.close(nil)
	}
}
