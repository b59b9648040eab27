// Package app wires configuration, the portal client and the client-side
// stores into one container shared by the CLI commands and the dashboard.
package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/placement/internal/config"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/log"
	"github.com/felixgeelhaar/placement/internal/metrics"
	"github.com/felixgeelhaar/placement/internal/notification"
	"github.com/felixgeelhaar/placement/internal/platform"
	"github.com/felixgeelhaar/placement/internal/session"
	"github.com/felixgeelhaar/placement/internal/telemetry"
	"github.com/felixgeelhaar/placement/internal/tokenstore"
)

// Toaster receives transient user-facing messages from both stores.
type Toaster interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Options adjusts how a Container is built.
type Options struct {
	// Toaster defaults to discarding toasts.
	Toaster Toaster
	// Ephemeral keeps tokens in memory only.
	Ephemeral bool
	// Tokens overrides the token store entirely.
	Tokens tokenstore.Store
	// HTTPClient overrides the transport used by the API client.
	HTTPClient *http.Client
	// Registry receives the client metrics. A private registry is created when nil.
	Registry *prometheus.Registry
}

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *log.Logger

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Client *platform.Client
	Tokens tokenstore.Store

	Session       *session.Store
	Notifications *notification.Store
	Poller        *notification.Poller

	mu       sync.Mutex
	closers  []func()
	lastSeen session.Phase
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: log.New(cfg.Logging()),
	}
	log.SetDefaultLogger(c.Logger)

	if err := c.initTelemetry(); err != nil {
		return nil, err
	}
	c.initMetrics(opts.Registry)
	c.initTokens(opts)
	c.initClient(opts.HTTPClient)
	c.initStores(opts.Toaster)

	if err := c.initPoller(); err != nil {
		return nil, err
	}
	c.observeStores()

	return c, nil
}

func (c *Container) initTelemetry() error {
	shutdown, err := telemetry.InitProvider(context.Background(), c.Config.Tracing())
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "cannot start tracing", err)
	}
	c.addCloser(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			c.Logger.WithError(err).Debug("trace export incomplete")
		}
	})
	return nil
}

func (c *Container) initMetrics(reg *prometheus.Registry) {
	if reg == nil {
		c.Registry, c.Metrics = metrics.NewRegistry()
		return
	}
	c.Registry = reg
	c.Metrics = metrics.NewMetrics(reg)
}

func (c *Container) initTokens(opts Options) {
	switch {
	case opts.Tokens != nil:
		c.Tokens = opts.Tokens
	case opts.Ephemeral:
		c.Tokens = tokenstore.NewMemoryStore()
	default:
		c.Tokens = tokenstore.NewFileStore(c.Config.TokenFile)
	}
}

func (c *Container) initClient(hc *http.Client) {
	clientOpts := []platform.Option{
		platform.WithTokenSource(sessionTokens{c}),
		platform.WithObserver(c.Metrics.RecordAPICall),
	}
	if hc != nil {
		clientOpts = append(clientOpts, platform.WithHTTPClient(hc))
	}
	clientOpts = append(clientOpts, platform.WithTimeout(c.Config.RequestTimeout))
	c.Client = platform.NewClient(c.Config.APIURL, clientOpts...)
}

func (c *Container) initStores(toaster Toaster) {
	sessionOpts := []session.Option{session.WithLogger(c.Logger)}
	notifOpts := []notification.Option{notification.WithLogger(c.Logger)}
	if toaster != nil {
		sessionOpts = append(sessionOpts, session.WithToaster(toaster))
		notifOpts = append(notifOpts, notification.WithToaster(toaster))
	}

	c.Session = session.NewStore(c.Client, c.Tokens, sessionOpts...)
	c.Notifications = notification.NewStore(c.Client, c.Session, notifOpts...)
}

func (c *Container) initPoller() error {
	poller, err := notification.NewPoller(notification.PollerConfig{
		Store:    c.Notifications,
		Interval: c.Config.PollInterval,
		PageSize: c.Config.PageSize,
		OnPoll:   c.Metrics.RecordPoll,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	c.Poller = poller
	return nil
}

func (c *Container) observeStores() {
	c.addCloser(c.Session.Subscribe(func(st session.State) {
		c.mu.Lock()
		changed := st.Phase != c.lastSeen
		c.lastSeen = st.Phase
		c.mu.Unlock()
		if changed {
			c.Metrics.RecordSessionPhase(st.Phase.String())
		}
	}))
	c.addCloser(c.Notifications.Subscribe(func(st notification.State) {
		c.Metrics.SetUnread(st.UnreadCount)
	}))
}

// Startup restores the persisted session.
func (c *Container) Startup(ctx context.Context) error {
	err := c.Session.Startup(ctx)
	c.Metrics.RecordError(err, "session")
	return err
}

// StartPolling ties the notification poller to the session until Close.
func (c *Container) StartPolling(ctx context.Context) {
	c.addCloser(c.Poller.Bind(ctx, c.Session))
}

// Close releases subscriptions and stops polling.
func (c *Container) Close() {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func (c *Container) addCloser(fn func()) {
	c.mu.Lock()
	c.closers = append(c.closers, fn)
	c.mu.Unlock()
}

// sessionTokens reads the bearer token from the session store, which is
// created after the client that depends on it.
type sessionTokens struct {
	c *Container
}

func (t sessionTokens) AccessToken() string {
	if t.c.Session == nil {
		return ""
	}
	return t.c.Session.AccessToken()
}
