// Package notification keeps the signed-in user's in-app notifications and
// unread badge current.
package notification

import (
	"github.com/felixgeelhaar/placement/internal/domain"
)

// State is an immutable snapshot of the notification collection, newest first.
type State struct {
	Notifications []domain.Notification
	UnreadCount   int
	IsLoading     bool
	Error         string
}

// Action is a notification event. The set is closed.
type Action interface {
	notificationAction()
}

type (
	FetchStarted   struct{}
	FetchSucceeded struct {
		Page  int
		Items []domain.Notification
	}
	FetchFailed struct {
		Err string
	}
	// FetchAbandoned settles a fetch whose result was discarded as stale.
	FetchAbandoned    struct{}
	UnreadCountLoaded struct {
		Count int
	}
	MarkedRead struct {
		ID string
	}
	MarkedAllRead struct{}
	Reset         struct{}
)

func (FetchStarted) notificationAction()      {}
func (FetchSucceeded) notificationAction()    {}
func (FetchFailed) notificationAction()       {}
func (FetchAbandoned) notificationAction()    {}
func (UnreadCountLoaded) notificationAction() {}
func (MarkedRead) notificationAction()        {}
func (MarkedAllRead) notificationAction()     {}
func (Reset) notificationAction()             {}

// Reduce returns the state that follows s after a without mutating s.
//
// Every transition that changes the list leaves UnreadCount equal to the number
// of unread records. UnreadCountLoaded sets the badge from the server alone; the
// next list transition reconciles it.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted:
		s.IsLoading = true
		return s

	case FetchSucceeded:
		var list []domain.Notification
		if a.Page <= 1 {
			list = append([]domain.Notification(nil), a.Items...)
		} else {
			list = make([]domain.Notification, 0, len(s.Notifications)+len(a.Items))
			list = append(list, s.Notifications...)
			list = append(list, a.Items...)
		}
		return State{
			Notifications: list,
			UnreadCount:   domain.CountUnread(list),
		}

	case FetchFailed:
		s.IsLoading = false
		s.Error = a.Err
		return s

	case FetchAbandoned:
		s.IsLoading = false
		return s

	case UnreadCountLoaded:
		if a.Count < 0 {
			a.Count = 0
		}
		s.UnreadCount = a.Count
		return s

	case MarkedRead:
		return markRead(s, a.ID)

	case MarkedAllRead:
		list := make([]domain.Notification, len(s.Notifications))
		for i, n := range s.Notifications {
			n.IsRead = true
			list[i] = n
		}
		s.Notifications = list
		s.UnreadCount = 0
		return s

	case Reset:
		return State{}

	default:
		return s
	}
}

// markRead flips one record and decrements the badge by at most one. A record
// that is not loaded only decrements when the badge counts more than the list.
func markRead(s State, id string) State {
	list := make([]domain.Notification, len(s.Notifications))
	copy(list, s.Notifications)

	found, flipped := false, false
	for i := range list {
		if list[i].ID == id {
			found = true
			if !list[i].IsRead {
				list[i].IsRead = true
				flipped = true
			}
			break
		}
	}

	s.Notifications = list
	switch {
	case flipped:
		s.UnreadCount--
	case !found && s.UnreadCount > domain.CountUnread(list):
		s.UnreadCount--
	}
	if s.UnreadCount < 0 {
		s.UnreadCount = 0
	}
	return s
}
