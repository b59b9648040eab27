package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/log"
	"github.com/felixgeelhaar/placement/internal/platform"
	"github.com/felixgeelhaar/placement/internal/session"
	"github.com/felixgeelhaar/placement/internal/tokenstore"
)

func TestNewPoller(t *testing.T) {
	tests := []struct {
		name         string
		config       PollerConfig
		expectError  bool
		wantInterval time.Duration
	}{
		{
			name:         "defaults",
			config:       PollerConfig{Store: newTestStore(&fakeAPI{}, signedIn())},
			wantInterval: 30 * time.Second,
		},
		{
			name:         "custom interval",
			config:       PollerConfig{Store: newTestStore(&fakeAPI{}, signedIn()), Interval: time.Second},
			wantInterval: time.Second,
		},
		{
			name:        "missing store",
			config:      PollerConfig{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poller, err := NewPoller(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, poller)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInterval, poller.Interval())
			assert.Equal(t, DefaultPageSize, poller.pageSize)
		})
	}
}

func TestPoller_AcquireFetchesOnceThenTicks(t *testing.T) {
	api := &fakeAPI{pages: map[int][]domain.Notification{1: page("a", "b")}, unread: 2}
	store := newTestStore(api, signedIn())
	poller, err := NewPoller(PollerConfig{Store: store, Interval: 25 * time.Millisecond, Logger: log.Discard()})
	require.NoError(t, err)

	require.True(t, poller.Acquire(context.Background()))
	assert.False(t, poller.Acquire(context.Background()), "second acquire must not start another timer")

	require.Eventually(t, func() bool { return api.unreadCallCount() >= 3 }, time.Second, 5*time.Millisecond)

	poller.Release()
	stopped := api.unreadCallCount()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, stopped, api.unreadCallCount(), "no fetches after release")
	assert.Equal(t, 1, api.listCalls, "list is loaded once per session")
	assert.False(t, poller.Active())
	assert.Equal(t, State{}, store.State(), "release resets the store")
}

func TestPoller_ReleaseDoesNotWaitForInFlightRequest(t *testing.T) {
	api := &fakeAPI{unreadGate: make(chan struct{})}
	store := newTestStore(api, signedIn())
	poller, err := NewPoller(PollerConfig{Store: store, Interval: time.Hour, Logger: log.Discard()})
	require.NoError(t, err)

	poller.Acquire(context.Background())
	require.Eventually(t, func() bool { return api.unreadCallCount() == 1 }, time.Second, time.Millisecond)

	released := make(chan struct{})
	go func() {
		poller.Release()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("release blocked on an in-flight request")
	}
}

func TestPoller_OnPollReportsEachRefresh(t *testing.T) {
	api := &fakeAPI{unread: 1}
	store := newTestStore(api, signedIn())

	polls := make(chan error, 16)
	poller, err := NewPoller(PollerConfig{
		Store:    store,
		Interval: 10 * time.Millisecond,
		OnPoll:   func(err error) { polls <- err },
		Logger:   log.Discard(),
	})
	require.NoError(t, err)

	poller.Acquire(context.Background())
	defer poller.Release()

	for i := 0; i < 2; i++ {
		select {
		case err := <-polls:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("poll not reported")
		}
	}
}

// sessionAPI satisfies session.API for binding tests.
type sessionAPI struct{ user domain.User }

func (s *sessionAPI) Login(ctx context.Context, email, password string) (*platform.AuthResponse, error) {
	return &platform.AuthResponse{User: &s.user, Tokens: &domain.Tokens{AccessToken: "a", RefreshToken: "r"}}, nil
}

func (s *sessionAPI) Register(ctx context.Context, req platform.RegisterRequest) (*platform.AuthResponse, error) {
	return &platform.AuthResponse{Message: "pending"}, nil
}

func (s *sessionAPI) Me(ctx context.Context) (*domain.User, error) { return &s.user, nil }

func (s *sessionAPI) Logout(ctx context.Context) error { return nil }

func TestPoller_BoundToSessionLifecycle(t *testing.T) {
	sessions := session.NewStore(&sessionAPI{user: domain.User{ID: "u-1", Role: domain.RoleStudent}},
		tokenstore.NewMemoryStore(), session.WithLogger(log.Discard()))

	api := &fakeAPI{pages: map[int][]domain.Notification{1: page("a")}, unread: 1}
	store := newTestStore(api, sessions)
	poller, err := NewPoller(PollerConfig{Store: store, Interval: 20 * time.Millisecond, Logger: log.Discard()})
	require.NoError(t, err)

	ctx := context.Background()
	unbind := poller.Bind(ctx, sessions)
	defer unbind()

	require.NoError(t, sessions.Startup(ctx))
	assert.False(t, poller.Active(), "no polling before authentication")
	assert.Zero(t, api.unreadCallCount())

	_, err = sessions.Login(ctx, "asha@uni.edu", "secret123")
	require.NoError(t, err)
	assert.True(t, poller.Active())

	require.Eventually(t, func() bool { return api.unreadCallCount() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, store.State().UnreadCount)

	require.NoError(t, sessions.Logout(ctx))
	assert.False(t, poller.Active())
	after := api.unreadCallCount()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, api.unreadCallCount(), "timer torn down on logout")
	assert.Equal(t, State{}, store.State())
}
