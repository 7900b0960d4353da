// Package memory holds process-local driven adapters.
package memory

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NotificationStore = (*NotificationStore)(nil)

// NotificationStore is a copy-on-write notification log. Readers load an
// immutable snapshot without locking; writers serialize on mu and publish a
// new snapshot. Contents are lost on restart.
type NotificationStore struct {
	mu     sync.Mutex
	items  atomic.Pointer[[]model.Notification]
	nextID atomic.Int64
	now    func() time.Time
}

// NewNotificationStore creates an empty store. A nil now uses time.Now.
func NewNotificationStore(now func() time.Time) *NotificationStore {
	if now == nil {
		now = time.Now
	}
	s := &NotificationStore{now: now}
	empty := []model.Notification{}
	s.items.Store(&empty)
	return s
}

// Append stores a notification with the next ID, stamped with the current time.
func (s *NotificationStore) Append(kind model.NotificationKind, message string) model.Notification {
	n := model.Notification{
		ID:        s.nextID.Add(1),
		Kind:      kind,
		Message:   message,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := *s.items.Load()
	next := make([]model.Notification, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, n)
	s.items.Store(&next)

	return n
}

// ListAll returns a copy of the notifications, newest first. Ties on
// CreatedAt are broken by the higher ID.
func (s *NotificationStore) ListAll() []model.Notification {
	out := slices.Clone(*s.items.Load())
	slices.SortFunc(out, func(a, b model.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// RemoveByID deletes the notification with the given ID.
func (s *NotificationStore) RemoveByID(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := *s.items.Load()
	idx := slices.IndexFunc(cur, func(n model.Notification) bool { return n.ID == id })
	if idx < 0 {
		return false
	}

	next := make([]model.Notification, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	s.items.Store(&next)
	return true
}

// ClearAll deletes every notification. IDs keep increasing afterwards.
func (s *NotificationStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := []model.Notification{}
	s.items.Store(&empty)
}

// Len returns the number of stored notifications.
func (s *NotificationStore) Len() int {
	return len(*s.items.Load())
}
