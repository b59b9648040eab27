package notification

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/log"
	"github.com/felixgeelhaar/placement/internal/platform"
)

// DefaultPageSize is the list size fetched when polling starts.
const DefaultPageSize = 20

// sharedFetchTimeout bounds a collapsed unread-count request, which outlives
// the cancellation of whichever caller started it.
const sharedFetchTimeout = 30 * time.Second

// API is the part of the portal API the store needs.
type API interface {
	ListNotifications(ctx context.Context, page, limit int) (*platform.ListNotificationsResponse, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Authenticator reports whether anyone is signed in.
type Authenticator interface {
	IsAuthenticated() bool
}

// Toaster shows transient user-facing messages.
type Toaster interface {
	Success(msg string)
	Error(msg string)
}

type nopToaster struct{}

func (nopToaster) Success(string) {}
func (nopToaster) Error(string)   {}

// Option configures a Store.
type Option func(*Store)

// WithToaster sets where mark-read results are reported.
func WithToaster(t Toaster) Option {
	return func(s *Store) {
		if t != nil {
			s.toast = t
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.Component("notifications") }
}

// Store owns the notification state for the signed-in user.
//
// Every operation is a no-op while signed out and re-checks authentication when
// its response arrives. Local mutations advance a version; a fetch that started
// under an older version is discarded so it cannot undo a newer mark-read.
type Store struct {
	api    API
	auth   Authenticator
	toast  Toaster
	logger *log.Logger
	group  singleflight.Group

	notify sync.Mutex

	mu      sync.Mutex
	state   State
	version uint64
	subs    map[int]func(State)
	nextSub int
}

// NewStore creates an empty store gated on auth.
func NewStore(api API, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		api:    api,
		auth:   auth,
		toast:  nopToaster{},
		logger: log.DefaultLogger().Component("notifications"),
		subs:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change and calls it once with the
// current state before returning.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.state
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// FetchNotifications loads one page. Page 1 replaces the list and later pages
// append to it without de-duplication.
func (s *Store) FetchNotifications(ctx context.Context, page, limit int) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	version := s.dispatch(FetchStarted{})

	resp, err := s.api.ListNotifications(ctx, page, limit)
	if err != nil {
		s.logger.WithError(err).Warn("failed to fetch notifications", "page", page)
		if !s.commit(version, FetchFailed{Err: platform.Describe(err)}) {
			s.dispatch(FetchAbandoned{})
		}
		return errors.Wrap(errors.ErrCodeNotificationFetch, "failed to fetch notifications", err)
	}

	items := make([]domain.Notification, len(resp.Notifications))
	for i, n := range resp.Notifications {
		n.Type = n.Type.Normalize()
		items[i] = n
	}

	if !s.commit(version, FetchSucceeded{Page: page, Items: items}) {
		s.logger.Debug("discarding stale notification page", "page", page)
		s.dispatch(FetchAbandoned{})
	}
	return nil
}

// FetchUnreadCount refreshes the badge. Concurrent callers share one request;
// each caller's own ctx only ends its wait.
func (s *Store) FetchUnreadCount(ctx context.Context) (int, error) {
	if !s.auth.IsAuthenticated() {
		return 0, nil
	}

	ch := s.group.DoChan("unread-count", func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		version := s.currentVersion()
		count, err := s.api.UnreadCount(shared)
		if err != nil {
			return 0, err
		}
		if !s.commit(version, UnreadCountLoaded{Count: count}) {
			s.logger.Debug("discarding stale unread count", "count", count)
		}
		return count, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			s.logger.WithError(res.Err).Warn("failed to fetch unread count")
			return 0, errors.Wrap(errors.ErrCodeNotificationFetch, "failed to fetch unread count", res.Err)
		}
		return res.Val.(int), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// MarkAsRead marks one notification read on the server, then locally.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}

	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		s.toast.Error("Failed to mark notification as read")
		s.logger.WithError(err).Warn("mark read failed", "notification_id", id)
		return errors.Wrap(errors.ErrCodeNotificationMark, "failed to mark notification "+strconv.Quote(id)+" as read", err)
	}

	s.mutate(MarkedRead{ID: id})
	return nil
}

// MarkAllAsRead marks every notification read on the server, then locally.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}

	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		s.toast.Error("Failed to mark all notifications as read")
		s.logger.WithError(err).Warn("mark all read failed")
		return errors.Wrap(errors.ErrCodeNotificationMark, "failed to mark all notifications as read", err)
	}

	if s.mutate(MarkedAllRead{}) {
		s.toast.Success("All notifications marked as read")
	}
	return nil
}

// Reset discards everything held for the previous user.
func (s *Store) Reset() {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.version++
	s.state = Reduce(s.state, Reset{})
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
}

func (s *Store) currentVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// dispatch reduces a and returns the version it ran under.
func (s *Store) dispatch(a Action) uint64 {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	version := s.version
	s.state = Reduce(s.state, a)
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
	return version
}

// commit applies a fetch result if the user is still signed in and nothing
// changed the collection since version.
func (s *Store) commit(version uint64, a Action) bool {
	if !s.auth.IsAuthenticated() {
		return false
	}

	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, a)
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
	return true
}

// mutate applies a local change and invalidates in-flight fetches.
func (s *Store) mutate(a Action) bool {
	if !s.auth.IsAuthenticated() {
		return false
	}

	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.version++
	s.state = Reduce(s.state, a)
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
	return true
}

// subscribers must be called with mu held.
func (s *Store) subscribers() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func deliver(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
