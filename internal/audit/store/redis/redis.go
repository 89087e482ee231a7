// Package redis persists audit entries in a Redis list, newest first.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"kbgate/internal/audit"
)

const (
	entriesKey = "kbgate:audit:entries"
	lastIDKey  = "kbgate:audit:last_id"
)

// Store implements audit.Store on Redis. Entries are LPUSHed so LRANGE 0 N
// reads most-recent-first without sorting.
type Store struct {
	client *goredis.Client
}

// New creates a Redis-backed audit store.
func New(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, entriesKey, payload)
	pipe.Set(ctx, lastIDKey, entry.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int, traceID string) ([]audit.Entry, error) {
	// Without a trace filter the list head is exactly the answer. With one,
	// scan forward in chunks until the limit is met.
	out := make([]audit.Entry, 0, limit)
	const chunk = 128
	for start := int64(0); len(out) < limit; start += chunk {
		raw, err := s.client.LRange(ctx, entriesKey, start, start+chunk-1).Result()
		if err != nil {
			return nil, fmt.Errorf("range audit entries: %w", err)
		}
		if len(raw) == 0 {
			break
		}
		for _, item := range raw {
			var entry audit.Entry
			if err := json.Unmarshal([]byte(item), &entry); err != nil {
				return nil, fmt.Errorf("unmarshal audit entry: %w", err)
			}
			if traceID != "" && entry.TraceID != traceID {
				continue
			}
			out = append(out, entry)
			if len(out) == limit {
				break
			}
		}
		if traceID == "" && len(raw) < chunk {
			break
		}
	}
	return out, nil
}

func (s *Store) LastID(ctx context.Context) (uint64, error) {
	val, err := s.client.Get(ctx, lastIDKey).Uint64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read audit high-water mark: %w", err)
	}
	return val, nil
}
