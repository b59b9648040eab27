package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/placement/internal/domain"
)

func items(read ...bool) []domain.Notification {
	out := make([]domain.Notification, len(read))
	for i, r := range read {
		out[i] = domain.Notification{ID: string(rune('a' + i)), IsRead: r}
	}
	return out
}

func TestReduce_FetchReplacesAndAppends(t *testing.T) {
	s := Reduce(State{}, FetchStarted{})
	assert.True(t, s.IsLoading)

	s = Reduce(s, FetchSucceeded{Page: 1, Items: items(false, true, false)})
	assert.Len(t, s.Notifications, 3)
	assert.Equal(t, 2, s.UnreadCount)
	assert.False(t, s.IsLoading)

	s = Reduce(s, FetchSucceeded{Page: 2, Items: items(false)})
	assert.Len(t, s.Notifications, 4)
	assert.Equal(t, 3, s.UnreadCount)

	s = Reduce(s, FetchSucceeded{Page: 1, Items: items(true)})
	assert.Len(t, s.Notifications, 1)
	assert.Equal(t, 0, s.UnreadCount)
}

func TestReduce_AppendDoesNotDeduplicate(t *testing.T) {
	s := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false)})
	s = Reduce(s, FetchSucceeded{Page: 2, Items: items(false)})

	assert.Len(t, s.Notifications, 2)
	assert.Equal(t, s.Notifications[0].ID, s.Notifications[1].ID)
}

func TestReduce_MarkedReadIsIdempotent(t *testing.T) {
	s := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false, false)})

	s = Reduce(s, MarkedRead{ID: "a"})
	assert.Equal(t, 1, s.UnreadCount)
	assert.True(t, s.Notifications[0].IsRead)

	s = Reduce(s, MarkedRead{ID: "a"})
	assert.Equal(t, 1, s.UnreadCount)
}

func TestReduce_MarkedReadFloorsAtZero(t *testing.T) {
	s := Reduce(State{}, MarkedRead{ID: "missing"})
	assert.Equal(t, 0, s.UnreadCount)
}

func TestReduce_MarkedReadOfUnloadedRecordUsesServerCount(t *testing.T) {
	s := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false)})
	s = Reduce(s, UnreadCountLoaded{Count: 5})

	s = Reduce(s, MarkedRead{ID: "zz"})
	assert.Equal(t, 4, s.UnreadCount)

	// the badge never drops below the unread records actually loaded
	s = Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false, false)})
	s = Reduce(s, MarkedRead{ID: "zz"})
	assert.Equal(t, 2, s.UnreadCount)
}

func TestReduce_MarkAllThenMarkOne(t *testing.T) {
	s := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false, false, true)})
	s = Reduce(s, MarkedAllRead{})
	assert.Equal(t, 0, s.UnreadCount)
	for _, n := range s.Notifications {
		assert.True(t, n.IsRead)
	}

	s = Reduce(s, MarkedRead{ID: "b"})
	assert.Equal(t, 0, s.UnreadCount)
}

func TestReduce_FailureAndReset(t *testing.T) {
	s := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false)})
	s = Reduce(s, FetchStarted{})
	s = Reduce(s, FetchFailed{Err: "network down"})
	assert.False(t, s.IsLoading)
	assert.Equal(t, "network down", s.Error)
	assert.Len(t, s.Notifications, 1, "failed fetch keeps last-known-good list")

	s = Reduce(s, Reset{})
	assert.Equal(t, State{}, s)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false, false)})
	_ = Reduce(before, MarkedRead{ID: "a"})
	_ = Reduce(before, MarkedAllRead{})

	assert.False(t, before.Notifications[0].IsRead)
	assert.False(t, before.Notifications[1].IsRead)
	assert.Equal(t, 2, before.UnreadCount)
}

func TestReduce_UnknownActionIsNoop(t *testing.T) {
	before := Reduce(State{}, FetchSucceeded{Page: 1, Items: items(false)})
	assert.Equal(t, before, Reduce(before, nil))
}
