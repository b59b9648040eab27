package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/placement/internal/notification"
	"github.com/felixgeelhaar/placement/internal/session"
	"github.com/felixgeelhaar/placement/internal/ux"
)

// Sessions is the part of the session store the dashboard drives.
type Sessions interface {
	State() session.State
	Logout(ctx context.Context) error
}

// Notifications is the part of the notification store the dashboard drives.
type Notifications interface {
	State() notification.State
	FetchNotifications(ctx context.Context, page, limit int) error
	FetchUnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
}

// Model represents the dashboard state
type Model struct {
	ctx      context.Context
	sessions Sessions
	notes    Notifications
	pageSize int
	now      func() time.Time

	session session.State
	notif   notification.State

	cursor int
	page   int
	busy   int
	toast  *ux.Toast

	width    int
	height   int
	quitting bool
	showHelp bool

	help    help.Model
	spinner spinner.Model
	styles  Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Badge    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Selected lipgloss.Style
	Unread   lipgloss.Style
}

// NewModel creates a dashboard over the two stores.
func NewModel(ctx context.Context, sessions Sessions, notes Notifications, pageSize int) Model {
	if pageSize <= 0 {
		pageSize = notification.DefaultPageSize
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		ctx:      ctx,
		sessions: sessions,
		notes:    notes,
		pageSize: pageSize,
		now:      time.Now,
		session:  sessions.State(),
		notif:    notes.State(),
		page:     1,
		help:     help.New(),
		spinner:  sp,
		styles:   DefaultStyles(),
	}
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("196")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("63")),
		Unread: lipgloss.NewStyle().Bold(true),
	}
}

// SessionMsg carries a new session snapshot.
type SessionMsg struct{ State session.State }

// NotificationsMsg carries a new notification snapshot.
type NotificationsMsg struct{ State notification.State }

// ToastMsg carries a transient message for the status line.
type ToastMsg struct{ Toast ux.Toast }

type doneMsg struct {
	err error
}

type clockMsg time.Time

// toastTTL is how long a toast stays on the status line.
const toastTTL = 4 * time.Second

type toastExpiredMsg struct{ toast *ux.Toast }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, clock())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SessionMsg:
		m.session = msg.State
		if !msg.State.IsAuthenticated && !msg.State.IsLoading {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case NotificationsMsg:
		m.notif = msg.State
		if m.cursor >= len(m.notif.Notifications) {
			m.cursor = max(len(m.notif.Notifications)-1, 0)
		}
		return m, nil

	case ToastMsg:
		t := msg.Toast
		m.toast = &t
		return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{toast: &t} })

	case toastExpiredMsg:
		if m.toast != nil && msg.toast != nil && *m.toast == *msg.toast {
			m.toast = nil
		}
		return m, nil

	case doneMsg:
		if m.busy > 0 {
			m.busy--
		}
		return m, nil

	case clockMsg:
		return m, clock()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.notif.Notifications)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Refresh):
		m.page = 1
		m.cursor = 0
		return m.run(func(ctx context.Context) error {
			if err := m.notes.FetchNotifications(ctx, 1, m.pageSize); err != nil {
				return err
			}
			_, err := m.notes.FetchUnreadCount(ctx)
			return err
		})

	case key.Matches(msg, keys.NextPage):
		m.page++
		page := m.page
		return m.run(func(ctx context.Context) error {
			return m.notes.FetchNotifications(ctx, page, m.pageSize)
		})

	case key.Matches(msg, keys.MarkRead):
		n, ok := m.selected()
		if !ok || n.IsRead {
			return m, nil
		}
		id := n.ID
		return m.run(func(ctx context.Context) error {
			return m.notes.MarkAsRead(ctx, id)
		})

	case key.Matches(msg, keys.MarkAll):
		if m.notif.UnreadCount == 0 {
			return m, nil
		}
		return m.run(m.notes.MarkAllAsRead)

	case key.Matches(msg, keys.Logout):
		return m.run(m.sessions.Logout)
	}

	return m, nil
}

// run executes a store operation off the update loop. Its effects arrive
// through the store subscriptions; doneMsg only clears the busy indicator.
func (m Model) run(op func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy++
	ctx := m.ctx
	return m, func() tea.Msg {
		return doneMsg{err: op(ctx)}
	}
}

func clock() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return clockMsg(t) })
}
