package driven

import "github.com/ericfisherdev/accessvault/internal/domain/model"

// NotificationStore is the in-process log of expiration notifications.
// Appends and reads may happen concurrently without caller coordination.
type NotificationStore interface {
	// Append stores a new notification with the next ID and the current time.
	Append(kind model.NotificationKind, message string) model.Notification

	// ListAll returns a snapshot ordered by CreatedAt descending.
	ListAll() []model.Notification

	// RemoveByID deletes one notification. Returns false if it was absent.
	RemoveByID(id int64) bool

	// ClearAll deletes every notification.
	ClearAll()
}
