package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/placement/internal/notification"
	"github.com/felixgeelhaar/placement/internal/session"
	"github.com/felixgeelhaar/placement/internal/ux"
)

// Subscribable stores push snapshots to their subscribers.
type Subscribable[S any] interface {
	Subscribe(fn func(S)) (unsubscribe func())
}

// Adapter bridges store subscriptions to a running Bubble Tea program.
// Subscribers run under the stores' locks and must not block, so snapshots
// are coalesced here and forwarded by a pump goroutine.
type Adapter struct {
	mu      sync.Mutex
	session *session.State
	notif   *notification.State
	toasts  []ux.Toast
	wake    chan struct{}
}

// NewAdapter creates an idle adapter. Toast may be used as a ux.Recorder
// callback before the program starts.
func NewAdapter() *Adapter {
	return &Adapter{wake: make(chan struct{}, 1)}
}

// Toast queues a toast for the status line.
func (a *Adapter) Toast(t ux.Toast) {
	a.mu.Lock()
	a.toasts = append(a.toasts, t)
	a.mu.Unlock()
	a.signal()
}

func (a *Adapter) onSession(st session.State) {
	a.mu.Lock()
	a.session = &st
	a.mu.Unlock()
	a.signal()
}

func (a *Adapter) onNotifications(st notification.State) {
	a.mu.Lock()
	a.notif = &st
	a.mu.Unlock()
	a.signal()
}

func (a *Adapter) signal() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// drain returns the pending messages in delivery order.
func (a *Adapter) drain() []tea.Msg {
	a.mu.Lock()
	defer a.mu.Unlock()

	var msgs []tea.Msg
	if a.session != nil {
		msgs = append(msgs, SessionMsg{State: *a.session})
		a.session = nil
	}
	if a.notif != nil {
		msgs = append(msgs, NotificationsMsg{State: *a.notif})
		a.notif = nil
	}
	for _, t := range a.toasts {
		msgs = append(msgs, ToastMsg{Toast: t})
	}
	a.toasts = nil
	return msgs
}

// Run subscribes to both stores and runs the dashboard until the user quits,
// the session ends or ctx is cancelled.
func (a *Adapter) Run(ctx context.Context, sessions Subscribable[session.State], notes Subscribable[notification.State], model Model, opts ...tea.ProgramOption) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(model, append(opts, tea.WithContext(ctx))...)

	unsubSession := sessions.Subscribe(a.onSession)
	defer unsubSession()
	unsubNotes := notes.Subscribe(a.onNotifications)
	defer unsubNotes()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-a.wake:
				for _, msg := range a.drain() {
					program.Send(msg)
				}
			}
		}
	}()

	_, err := program.Run()
	cancel()
	wg.Wait()
	if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
		return nil
	}
	return err
}
