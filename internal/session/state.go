// Package session holds the client's authentication lifecycle: who is signed in,
// with which tokens, and which operation is in flight.
package session

import (
	"github.com/felixgeelhaar/placement/internal/domain"
)

// Phase names the lifecycle stage the session is in.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticating
	PhaseRegistering
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseRegistering:
		return "registering"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the session. Subscribers must not mutate
// the User or Tokens it points to.
type State struct {
	User            *domain.User
	Tokens          *domain.Tokens
	IsAuthenticated bool
	IsLoading       bool
	Phase           Phase
	// Pending is set after a registration the server accepted without issuing
	// tokens. It is a notice, not an error.
	Pending string
}

// Initial is the state at process start.
func Initial() State {
	return State{IsLoading: true, Phase: PhaseInitializing}
}

// Role returns the signed-in user's role.
func (s State) Role() (domain.Role, bool) {
	if !s.IsAuthenticated || s.User == nil {
		return "", false
	}
	return s.User.Role, true
}

// AccessToken returns the current bearer token, or "" when signed out.
func (s State) AccessToken() string {
	if s.Tokens == nil {
		return ""
	}
	return s.Tokens.AccessToken
}

// Action is a session event. The set is closed.
type Action interface {
	sessionAction()
}

type (
	StartupStarted   struct{}
	StartupSucceeded struct {
		User   domain.User
		Tokens domain.Tokens
	}
	StartupFailed struct{}

	LoginStarted   struct{}
	LoginSucceeded struct {
		User   domain.User
		Tokens domain.Tokens
	}
	LoginFailed struct{}

	RegisterStarted   struct{}
	RegisterSucceeded struct {
		User   domain.User
		Tokens domain.Tokens
	}
	RegisterPending struct {
		Message string
	}
	RegisterFailed struct{}

	LogoutStarted struct{}
	LoggedOut     struct{}

	UserUpdated struct {
		Patch domain.UserPatch
	}
)

func (StartupStarted) sessionAction()    {}
func (StartupSucceeded) sessionAction()  {}
func (StartupFailed) sessionAction()     {}
func (LoginStarted) sessionAction()      {}
func (LoginSucceeded) sessionAction()    {}
func (LoginFailed) sessionAction()       {}
func (RegisterStarted) sessionAction()   {}
func (RegisterSucceeded) sessionAction() {}
func (RegisterPending) sessionAction()   {}
func (RegisterFailed) sessionAction()    {}
func (LogoutStarted) sessionAction()     {}
func (LoggedOut) sessionAction()         {}
func (UserUpdated) sessionAction()       {}

// DefaultPendingMessage is shown when the server withholds tokens without saying why.
const DefaultPendingMessage = "Registration received. Your account is awaiting approval."

// Reduce returns the state that follows s after a. It never mutates s and
// ignores actions it does not know.
//
// IsAuthenticated is only ever set together with a non-nil User and a complete
// token pair.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case StartupStarted:
		s.IsLoading = true
		s.Phase = PhaseInitializing
		return s
	case StartupSucceeded:
		return signedIn(s, a.User, a.Tokens)
	case StartupFailed:
		return signedOut()

	case LoginStarted:
		s.IsLoading = true
		s.Phase = PhaseAuthenticating
		s.Pending = ""
		return s
	case LoginSucceeded:
		return signedIn(s, a.User, a.Tokens)
	case LoginFailed:
		return settle(s)

	case RegisterStarted:
		s.IsLoading = true
		s.Phase = PhaseRegistering
		s.Pending = ""
		return s
	case RegisterSucceeded:
		return signedIn(s, a.User, a.Tokens)
	case RegisterPending:
		s = settle(s)
		s.Pending = a.Message
		if s.Pending == "" {
			s.Pending = DefaultPendingMessage
		}
		return s
	case RegisterFailed:
		return settle(s)

	case LogoutStarted:
		s.IsLoading = true
		return s
	case LoggedOut:
		return signedOut()

	case UserUpdated:
		if !s.IsAuthenticated || s.User == nil {
			return s
		}
		merged := s.User.Merge(a.Patch)
		s.User = &merged
		return s

	default:
		return s
	}
}

func signedIn(s State, user domain.User, tokens domain.Tokens) State {
	if user.ID == "" || !tokens.Valid() {
		return settle(s)
	}
	return State{
		User:            &user,
		Tokens:          &tokens,
		IsAuthenticated: true,
		IsLoading:       false,
		Phase:           PhaseAuthenticated,
	}
}

func signedOut() State {
	return State{Phase: PhaseUnauthenticated}
}

// settle clears the loading flag and derives the phase from what is held,
// leaving User and Tokens untouched.
func settle(s State) State {
	s.IsLoading = false
	s.IsAuthenticated = s.User != nil && s.Tokens.Valid()
	if s.IsAuthenticated {
		s.Phase = PhaseAuthenticated
	} else {
		s.Phase = PhaseUnauthenticated
	}
	return s
}
