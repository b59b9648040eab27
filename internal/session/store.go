package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/log"
	"github.com/felixgeelhaar/placement/internal/platform"
	"github.com/felixgeelhaar/placement/internal/tokenstore"
)

// API is the part of the portal API the session needs.
type API interface {
	Login(ctx context.Context, email, password string) (*platform.AuthResponse, error)
	Register(ctx context.Context, req platform.RegisterRequest) (*platform.AuthResponse, error)
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
}

// Toaster shows transient user-facing messages.
type Toaster interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

type nopToaster struct{}

func (nopToaster) Success(string) {}
func (nopToaster) Info(string)    {}
func (nopToaster) Error(string)   {}

// Session is the payload of a successful login or registration.
type Session struct {
	User   domain.User
	Tokens domain.Tokens
}

// RegisterResult is the outcome of Register. Exactly one of Session and Pending is set.
type RegisterResult struct {
	Session *Session
	Pending bool
	Message string
}

// Option configures a Store.
type Option func(*Store)

// WithToaster sets where success and failure messages go.
func WithToaster(t Toaster) Option {
	return func(s *Store) {
		if t != nil {
			s.toast = t
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.Component("session") }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the process-wide session state.
//
// Each operation records the session epoch when it starts. Logout advances the
// epoch, and a response that resolves under an older epoch is dropped, so a
// slow login can never re-authenticate a session the user already left.
type Store struct {
	api    API
	tokens tokenstore.Store
	toast  Toaster
	logger *log.Logger
	now    func() time.Time

	// notify serializes reduction and subscriber delivery so every subscriber
	// sees transitions in dispatch order.
	notify sync.Mutex

	mu      sync.Mutex
	state   State
	epoch   uint64
	probe   *domain.Tokens
	subs    map[int]func(State)
	nextSub int
}

// NewStore creates a store in the initializing state.
func NewStore(api API, tokens tokenstore.Store, opts ...Option) *Store {
	s := &Store{
		api:    api,
		tokens: tokens,
		toast:  nopToaster{},
		logger: log.DefaultLogger().Component("session"),
		now:    time.Now,
		state:  Initial(),
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

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// AccessToken implements platform.TokenSource. During startup it returns the
// persisted token being checked.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok := s.state.AccessToken(); tok != "" {
		return tok
	}
	if s.probe != nil {
		return s.probe.AccessToken
	}
	return ""
}

// Subscribe registers fn for every state change and calls it once with the
// current state before returning. fn must not call mutating Store methods.
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

// Startup rehydrates the session from persisted tokens. Missing tokens settle
// unauthenticated. Tokens that are expired or rejected by the server are cleared
// so the next startup does not try them again.
func (s *Store) Startup(ctx context.Context) error {
	epoch := s.dispatch(StartupStarted{})

	tokens, err := s.tokens.Load()
	if err != nil {
		s.logger.WithError(err).Warn("discarding unreadable session file")
		s.commit(epoch, StartupFailed{}, s.tokens.Clear)
		return nil
	}
	if tokens == nil {
		s.commit(epoch, StartupFailed{}, nil)
		return nil
	}
	if tokenstore.Expired(tokens.RefreshToken, s.now()) {
		s.logger.Debug("persisted refresh token expired")
		s.commit(epoch, StartupFailed{}, s.tokens.Clear)
		return errors.NewSessionExpiredError(fmt.Errorf("refresh token expired"))
	}

	s.setProbe(tokens)
	user, err := s.api.Me(ctx)
	s.setProbe(nil)

	if err != nil {
		s.logger.WithError(err).Warn("session rehydration failed")
		s.commit(epoch, StartupFailed{}, s.tokens.Clear)
		return errors.NewSessionExpiredError(err)
	}

	if !s.commit(epoch, StartupSucceeded{User: *user, Tokens: *tokens}, nil) {
		return errors.New(errors.ErrCodeSessionStale, "session ended while it was being restored")
	}
	s.logger.Debug("session restored", "user_id", user.ID, "role", user.Role.String())
	return nil
}

// Login signs in with email and password and persists the issued tokens.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	epoch := s.dispatch(LoginStarted{})

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		if s.commit(epoch, LoginFailed{}, nil) {
			s.toast.Error(platform.Describe(err))
		}
		s.logger.WithError(err).Warn("login failed")
		return nil, loginError(err)
	}
	if !resp.HasSession() {
		if s.commit(epoch, LoginFailed{}, nil) {
			s.toast.Error("Login failed: the server did not return a session")
		}
		s.logger.Warn("login response without a user and tokens")
		return nil, errors.New(errors.ErrCodeBadResponse, "login response did not include a user and tokens")
	}

	sess := Session{User: *resp.User, Tokens: *resp.Tokens}
	if !s.commit(epoch, LoginSucceeded{User: sess.User, Tokens: sess.Tokens}, s.save(sess.Tokens)) {
		return nil, errors.New(errors.ErrCodeSessionStale, "login completed after the session ended")
	}

	s.toast.Success(fmt.Sprintf("Welcome back, %s!", sess.User.FullName()))
	return &sess, nil
}

// Register creates an account. The outcome depends on whether the server issued
// tokens, never on the requested role.
func (s *Store) Register(ctx context.Context, req platform.RegisterRequest) (*RegisterResult, error) {
	epoch := s.dispatch(RegisterStarted{})

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		if s.commit(epoch, RegisterFailed{}, nil) {
			s.toast.Error(platform.Describe(err))
		}
		s.logger.WithError(err).Warn("registration failed")
		return nil, errors.Wrap(errors.ErrCodeRegistrationFailed, "registration failed", err)
	}

	if resp.Tokens.Valid() && !resp.HasSession() {
		if s.commit(epoch, RegisterFailed{}, nil) {
			s.toast.Error("Registration failed: the server did not return the new account")
		}
		s.logger.Warn("registration issued tokens without a user")
		return nil, errors.New(errors.ErrCodeBadResponse, "registration response included tokens but no user")
	}
	if !resp.HasSession() {
		msg := resp.Message
		if msg == "" {
			msg = DefaultPendingMessage
		}
		if !s.commit(epoch, RegisterPending{Message: msg}, nil) {
			return nil, errors.New(errors.ErrCodeSessionStale, "registration completed after the session ended")
		}
		s.toast.Info(msg)
		return &RegisterResult{Pending: true, Message: msg}, nil
	}

	sess := Session{User: *resp.User, Tokens: *resp.Tokens}
	if !s.commit(epoch, RegisterSucceeded{User: sess.User, Tokens: sess.Tokens}, s.save(sess.Tokens)) {
		return nil, errors.New(errors.ErrCodeSessionStale, "registration completed after the session ended")
	}

	s.toast.Success(fmt.Sprintf("Welcome, %s!", sess.User.FullName()))
	return &RegisterResult{Session: &sess, Message: resp.Message}, nil
}

// Logout ends the session. The server call is best-effort; the local reset and
// token clear always happen. The returned error only reports a failed clear.
func (s *Store) Logout(ctx context.Context) error {
	s.notify.Lock()
	s.mu.Lock()
	s.epoch++
	hadTokens := s.state.Tokens.Valid()
	s.mu.Unlock()
	s.notify.Unlock()

	s.dispatch(LogoutStarted{})

	if hadTokens {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.WithError(err).Warn("server logout failed; clearing local session anyway")
		}
	}

	var clearErr error
	s.apply(func() {
		if err := s.tokens.Clear(); err != nil {
			clearErr = err
		}
	}, LoggedOut{})

	if clearErr != nil {
		s.logger.WithError(clearErr).Warn("failed to clear persisted tokens")
		s.toast.Error("Logged out, but the saved session could not be removed")
		return clearErr
	}
	s.toast.Success("Logged out")
	return nil
}

// UpdateUser shallow-merges patch into the signed-in user.
func (s *Store) UpdateUser(patch domain.UserPatch) (domain.User, error) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if !s.state.IsAuthenticated {
		s.mu.Unlock()
		return domain.User{}, errors.NewNotAuthenticatedError()
	}
	s.state = Reduce(s.state, UserUpdated{Patch: patch})
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
	return *next.User, nil
}

// dispatch reduces a unconditionally and returns the epoch it ran under.
func (s *Store) dispatch(a Action) uint64 {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	epoch := s.epoch
	s.state = Reduce(s.state, a)
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
	return epoch
}

// commit applies a, after running persist, only if no logout happened since
// epoch. It reports whether the action was applied.
func (s *Store) commit(epoch uint64, a Action, persist func() error) bool {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Debug("dropping stale session result", "action", fmt.Sprintf("%T", a))
		return false
	}
	if persist != nil {
		if err := persist(); err != nil {
			s.logger.WithError(err).Warn("failed to persist session tokens")
		}
	}
	s.state = Reduce(s.state, a)
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
	return true
}

// apply runs effect and reduces a in one step regardless of epoch.
func (s *Store) apply(effect func(), a Action) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	effect()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	deliver(subs, next)
}

func (s *Store) save(tokens domain.Tokens) func() error {
	return func() error { return s.tokens.Save(tokens) }
}

func (s *Store) setProbe(t *domain.Tokens) {
	s.mu.Lock()
	s.probe = t
	s.mu.Unlock()
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

func loginError(err error) error {
	switch {
	case platform.IsUnauthorized(err):
		return errors.NewInvalidCredentialsError(err)
	case platform.IsForbidden(err):
		return errors.Wrap(errors.ErrCodeForbidden, "account is not allowed to sign in", err).
			WithSuggestion("Recruiter and TPO accounts must be approved before they can sign in")
	case platform.IsNetwork(err), stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Wrap(errors.ErrCodeInvalidCredentials, "login failed", err)
	}
}
