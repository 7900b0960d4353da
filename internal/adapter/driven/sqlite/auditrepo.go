package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AuditLog = (*AuditRepo)(nil)

// AuditRepo is the SQLite implementation of the AuditLog port interface.
// Rows are insert-only.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new AuditRepo backed by the given DB.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Record inserts event. An empty ID is replaced with a fresh UUID.
func (r *AuditRepo) Record(ctx context.Context, event model.AuditEvent) error {
	const query = `INSERT INTO audit_events (id, actor, credential_id, action, occurred_at) VALUES (?, ?, ?, ?, ?)`

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		event.ID, event.Actor, event.CredentialID, string(event.Action), formatTime(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("record audit event for credential %d: %w", event.CredentialID, err)
	}
	return nil
}

// ListByCredential returns the events for a credential, newest first.
func (r *AuditRepo) ListByCredential(ctx context.Context, credentialID int64) ([]model.AuditEvent, error) {
	const query = `
		SELECT id, actor, credential_id, action, occurred_at
		FROM audit_events
		WHERE credential_id = ?
		ORDER BY occurred_at DESC, rowid DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, credentialID)
	if err != nil {
		return nil, fmt.Errorf("list audit events for credential %d: %w", credentialID, err)
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		var (
			e          model.AuditEvent
			action     string
			occurredAt string
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.CredentialID, &action, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = model.AuditAction(action)
		if e.Timestamp, err = parseTime(occurredAt); err != nil {
			return nil, fmt.Errorf("parse occurred_at: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
