package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/notification"
	"github.com/felixgeelhaar/placement/internal/session"
	"github.com/felixgeelhaar/placement/internal/ux"
)

type fakeSessions struct {
	state   session.State
	logouts int
}

func (f *fakeSessions) State() session.State { return f.state }
func (f *fakeSessions) Logout(context.Context) error {
	f.logouts++
	return nil
}

type fakeNotes struct {
	mu        sync.Mutex
	state     notification.State
	fetched   []int
	counted   int
	marked    []string
	markedAll int
}

func (f *fakeNotes) State() notification.State { return f.state }

func (f *fakeNotes) FetchNotifications(_ context.Context, page, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, page)
	return nil
}

func (f *fakeNotes) FetchUnreadCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted++
	return f.state.UnreadCount, nil
}

func (f *fakeNotes) MarkAsRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeNotes) MarkAllAsRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedAll++
	return nil
}

func signedInAs(role domain.Role) session.State {
	user := &domain.User{ID: "u-1", FirstName: "Asha", LastName: "Rao", Role: role}
	return session.State{
		User:            user,
		Tokens:          &domain.Tokens{AccessToken: "a", RefreshToken: "r"},
		IsAuthenticated: true,
		Phase:           session.PhaseAuthenticated,
	}
}

func inbox() notification.State {
	now := time.Now()
	return notification.State{
		Notifications: []domain.Notification{
			{ID: "n1", Title: "Shortlisted for SWE Intern", Type: domain.NotificationApplication, CreatedAt: now.Add(-5 * time.Minute)},
			{ID: "n2", Title: "Campus drive on Friday", Type: domain.NotificationEvent, IsRead: true, CreatedAt: now.Add(-2 * time.Hour)},
		},
		UnreadCount: 1,
	}
}

func newTestModel(role domain.Role) (Model, *fakeSessions, *fakeNotes) {
	sessions := &fakeSessions{state: signedInAs(role)}
	notes := &fakeNotes{state: inbox()}
	return NewModel(context.Background(), sessions, notes, 10), sessions, notes
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	if keys == "enter" {
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// runCmd executes a command synchronously and feeds the result back.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestView_ShowsRoleHomeAndBadge(t *testing.T) {
	tests := []struct {
		role     domain.Role
		home     string
		heading  string
		includes string
	}{
		{domain.RoleStudent, "/student", "Student dashboard", "/applications"},
		{domain.RoleRecruiter, "/recruiter", "Recruiter dashboard", "/jobs/new"},
		{domain.RoleTPO, "/tpo", "TPO dashboard", "/approvals"},
		{domain.RoleAdmin, "/admin", "Admin dashboard", "/approvals"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			m, _, _ := newTestModel(tt.role)
			view := m.View()

			assert.Contains(t, view, tt.heading)
			assert.Contains(t, view, tt.home)
			assert.Contains(t, view, tt.includes)
			assert.Contains(t, view, "Asha Rao")
			assert.Contains(t, view, "🔔 1")
			assert.Contains(t, view, "Shortlisted for SWE Intern")
			assert.Contains(t, view, "5m ago")
		})
	}
}

func TestView_StudentDoesNotSeeApprovals(t *testing.T) {
	m, _, _ := newTestModel(domain.RoleStudent)
	assert.NotContains(t, m.View(), "/approvals")
}

func TestUnreadBadge(t *testing.T) {
	assert.Equal(t, "", unreadBadge(0))
	assert.Equal(t, "7", unreadBadge(7))
	assert.Equal(t, "99+", unreadBadge(150))
}

func TestKeys_MarkReadUsesSelectedNotification(t *testing.T) {
	m, _, notes := newTestModel(domain.RoleStudent)

	m, cmd := press(t, m, "enter")
	assert.Equal(t, 1, m.busy)
	m = runCmd(t, m, cmd)
	assert.Equal(t, 0, m.busy)
	assert.Equal(t, []string{"n1"}, notes.marked)

	m, _ = press(t, m, "j")
	assert.Equal(t, 1, m.cursor)
	_, cmd = press(t, m, "m")
	assert.Nil(t, cmd, "already-read notification should not be marked again")
}

func TestKeys_RefreshNextPageAndMarkAll(t *testing.T) {
	m, _, notes := newTestModel(domain.RoleStudent)

	m, cmd := press(t, m, "n")
	m = runCmd(t, m, cmd)
	assert.Equal(t, 2, m.page)

	m, cmd = press(t, m, "r")
	m = runCmd(t, m, cmd)
	assert.Equal(t, 1, m.page)
	assert.Equal(t, []int{2, 1}, notes.fetched)
	assert.Equal(t, 1, notes.counted)

	m, cmd = press(t, m, "a")
	runCmd(t, m, cmd)
	assert.Equal(t, 1, notes.markedAll)
}

func TestKeys_MarkAllSkippedWhenNothingUnread(t *testing.T) {
	m, _, notes := newTestModel(domain.RoleStudent)
	next, _ := m.Update(NotificationsMsg{State: notification.State{}})

	_, cmd := press(t, next.(Model), "a")
	assert.Nil(t, cmd)
	assert.Zero(t, notes.markedAll)
}

func TestSessionEnd_QuitsDashboard(t *testing.T) {
	m, sessions, _ := newTestModel(domain.RoleTPO)

	m, cmd := press(t, m, "L")
	m = runCmd(t, m, cmd)
	assert.Equal(t, 1, sessions.logouts)

	loading := signedInAs(domain.RoleTPO)
	loading.IsLoading = true
	next, cmd := m.Update(SessionMsg{State: loading})
	assert.Nil(t, cmd)
	m = next.(Model)

	next, cmd = m.Update(SessionMsg{State: session.Initial()})
	assert.Nil(t, cmd, "initial state is still loading")

	out := session.State{Phase: session.PhaseUnauthenticated}
	next, cmd = next.(Model).Update(SessionMsg{State: out})
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).quitting)
	assert.Contains(t, next.View(), "Signed out")
}

func TestNotificationsMsg_ClampsCursor(t *testing.T) {
	m, _, _ := newTestModel(domain.RoleStudent)
	m, _ = press(t, m, "j")
	require.Equal(t, 1, m.cursor)

	next, _ := m.Update(NotificationsMsg{State: notification.State{Notifications: inbox().Notifications[:1]}})
	assert.Equal(t, 0, next.(Model).cursor)
}

func TestToast_ShownThenExpires(t *testing.T) {
	m, _, _ := newTestModel(domain.RoleStudent)
	toast := ux.Toast{Kind: ux.ToastError, Message: "Failed to mark notification as read"}

	next, cmd := m.Update(ToastMsg{Toast: toast})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.Contains(t, m.View(), "Failed to mark notification as read")

	next, _ = m.Update(toastExpiredMsg{toast: &toast})
	assert.False(t, strings.Contains(next.View(), "Failed to mark"))
}

func TestEmptyInbox(t *testing.T) {
	m, _, _ := newTestModel(domain.RoleStudent)
	next, _ := m.Update(NotificationsMsg{State: notification.State{}})
	assert.Contains(t, next.View(), "No notifications yet")
	assert.NotContains(t, next.View(), "🔔")
}
