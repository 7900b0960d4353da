package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// steppingClock returns a time one second later on every call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestNotificationStore_AppendAssignsIncreasingIDs(t *testing.T) {
	s := NewNotificationStore(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	a := s.Append(model.NotificationAlert, "first")
	b := s.Append(model.NotificationCritical, "second")

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, model.NotificationCritical, b.Kind)
	assert.True(t, b.CreatedAt.After(a.CreatedAt))
}

func TestNotificationStore_ListAllNewestFirst(t *testing.T) {
	s := NewNotificationStore(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	s.Append(model.NotificationAlert, "one")
	s.Append(model.NotificationAlert, "two")
	s.Append(model.NotificationAlert, "three")

	got := s.ListAll()

	require.Len(t, got, 3)
	assert.Equal(t, "three", got[0].Message)
	assert.Equal(t, "two", got[1].Message)
	assert.Equal(t, "one", got[2].Message)
}

func TestNotificationStore_ListAllTiesBrokenByID(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC)
	s := NewNotificationStore(func() time.Time { return fixed })
	s.Append(model.NotificationAlert, "a")
	s.Append(model.NotificationAlert, "b")

	got := s.ListAll()

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestNotificationStore_ListAllReturnsCopy(t *testing.T) {
	s := NewNotificationStore(nil)
	s.Append(model.NotificationAlert, "original")

	got := s.ListAll()
	got[0].Message = "mutated"

	assert.Equal(t, "original", s.ListAll()[0].Message)
}

func TestNotificationStore_RemoveByID(t *testing.T) {
	s := NewNotificationStore(nil)
	a := s.Append(model.NotificationAlert, "a")
	b := s.Append(model.NotificationAlert, "b")

	assert.True(t, s.RemoveByID(a.ID))
	assert.False(t, s.RemoveByID(a.ID))
	assert.False(t, s.RemoveByID(999))

	got := s.ListAll()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestNotificationStore_ClearAll(t *testing.T) {
	s := NewNotificationStore(nil)
	s.Append(model.NotificationAlert, "a")
	s.Append(model.NotificationCritical, "b")

	s.ClearAll()

	assert.Empty(t, s.ListAll())
	assert.Equal(t, 0, s.Len())

	// IDs are never reused.
	n := s.Append(model.NotificationAlert, "c")
	assert.Equal(t, int64(3), n.ID)
}

func TestNotificationStore_ConcurrentAppendAndRead(t *testing.T) {
	s := NewNotificationStore(nil)

	const writers, perWriter = 8, 200
	var wg sync.WaitGroup

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(model.NotificationAlert, fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					list := s.ListAll()
					assert.LessOrEqual(t, len(list), writers*perWriter)
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	list := s.ListAll()
	require.Len(t, list, writers*perWriter)

	ids := make(map[int64]struct{}, len(list))
	for _, n := range list {
		ids[n.ID] = struct{}{}
	}
	assert.Len(t, ids, writers*perWriter)
}
