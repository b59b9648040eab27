package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/placement/internal/log"
	"github.com/felixgeelhaar/placement/internal/session"
)

// DefaultPollInterval is how often the unread badge is refreshed.
const DefaultPollInterval = 30 * time.Second

// Poller refreshes the unread count while a session is active. It is acquired
// when the session becomes authenticated and released when it ends, so there is
// at most one timer per session.
type Poller struct {
	store    *Store
	interval time.Duration
	pageSize int
	onPoll   func(err error)
	logger   *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// PollerConfig holds configuration for the poller.
type PollerConfig struct {
	Store    *Store
	Interval time.Duration // default: 30s
	PageSize int           // first page loaded on acquire (default: 20)
	// OnPoll is called after every unread-count refresh, with its error.
	OnPoll func(err error)
	Logger *log.Logger
}

// NewPoller creates a poller for store.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	return &Poller{
		store:    cfg.Store,
		interval: cfg.Interval,
		pageSize: cfg.PageSize,
		onPoll:   cfg.OnPoll,
		logger:   log.OrDefault(cfg.Logger).Component("poller"),
	}, nil
}

// Interval returns the refresh period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Active reports whether the poller currently holds a timer.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Acquire starts polling. It loads the first page and the unread count once,
// then refreshes the count every interval. Acquiring an active poller does
// nothing and returns false.
func (p *Poller) Acquire(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.logger.Debug("polling started", "interval", p.interval.String())
	go p.run(ctx, done)
	return true
}

// Release stops the timer, abandons any request in flight, waits for the polling
// goroutine to exit and resets the store. Releasing an idle poller only resets.
func (p *Poller) Release() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		p.logger.Debug("polling stopped")
	}
	p.store.Reset()
}

// Bind ties the poller to the session: authenticated acquires, anything else
// releases. The returned function unsubscribes and releases.
func (p *Poller) Bind(ctx context.Context, sessions *session.Store) (unbind func()) {
	unsubscribe := sessions.Subscribe(func(st session.State) {
		if st.IsAuthenticated {
			p.Acquire(ctx)
			return
		}
		if p.Active() {
			p.Release()
		}
	})

	return func() {
		unsubscribe()
		p.Release()
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.store.FetchNotifications(ctx, 1, p.pageSize); err != nil && ctx.Err() == nil {
		p.logger.WithError(err).Debug("initial notification fetch failed")
	}
	p.poll(ctx)

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	_, err := p.store.FetchUnreadCount(ctx)
	if ctx.Err() != nil {
		return
	}
	if p.onPoll != nil {
		p.onPoll(err)
	}
}
