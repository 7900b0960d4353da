package model

import "time"

// Notification is a textual snapshot produced by the expiration monitor. It
// carries no reference back to the credential that caused it.
type Notification struct {
	ID        int64
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
}
