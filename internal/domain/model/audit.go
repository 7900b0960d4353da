package model

import "time"

// AuditInfo holds the bookkeeping fields shared by persisted entities. The
// store populates it at save time; callers never set it directly.
type AuditInfo struct {
	CreatedBy string
	CreatedAt time.Time
	UpdatedBy string
	UpdatedAt time.Time
}

// AuditEvent is an immutable record proving that a sensitive action happened.
type AuditEvent struct {
	ID           string
	Actor        string
	CredentialID int64
	Action       AuditAction
	Timestamp    time.Time
}
