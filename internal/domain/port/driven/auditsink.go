package driven

import (
	"context"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// AuditSink durably records audit events. A nil error means the event is
// stored; callers that disclose secrets must not proceed on error.
type AuditSink interface {
	Record(ctx context.Context, event model.AuditEvent) error
}

// AuditLog adds read access to recorded events.
type AuditLog interface {
	AuditSink

	// ListByCredential returns the events for a credential, newest first.
	ListByCredential(ctx context.Context, credentialID int64) ([]model.AuditEvent, error)
}
