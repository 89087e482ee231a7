// Package postgres persists audit entries in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"kbgate/internal/audit"
)

// Store implements audit.Store on a PostgreSQL table. The table is
// append-only by construction: no UPDATE or DELETE statements exist in this
// package, and the entry id is the primary key.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id         BIGINT PRIMARY KEY,
			timestamp  TIMESTAMPTZ NOT NULL,
			actor_role TEXT NOT NULL,
			trace_id   TEXT NOT NULL,
			action     TEXT NOT NULL,
			status     TEXT NOT NULL,
			details    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_entries_trace_idx ON audit_entries (trace_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate audit table: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, timestamp, actor_role, trace_id, action, status, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, int64(entry.ID), entry.Timestamp, entry.ActorRole, entry.TraceID, entry.Action, string(entry.Status), entry.Details)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int, traceID string) ([]audit.Entry, error) {
	query := `
		SELECT id, timestamp, actor_role, trace_id, action, status, details
		FROM audit_entries
	`
	args := []any{}
	if traceID != "" {
		query += ` WHERE trace_id = $1`
		args = append(args, traceID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var id int64
		var status string
		if err := rows.Scan(&id, &entry.Timestamp, &entry.ActorRole, &entry.TraceID, &entry.Action, &status, &entry.Details); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = uint64(id)
		entry.Status = audit.Status(status)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) LastID(ctx context.Context) (uint64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM audit_entries`).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("query audit high-water mark: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return uint64(last.Int64), nil
}
