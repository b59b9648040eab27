// Package guard decides whether a session may see a view.
package guard

import (
	"github.com/felixgeelhaar/placement/internal/domain"
)

// Paths the guard redirects to.
const (
	LoginPath         = "/login"
	NotAuthorizedPath = "/unauthorized"
)

// Outcome is the result of a guard decision.
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectNotAuthorized
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectNotAuthorized:
		return "redirect-not-authorized"
	default:
		return "unknown"
	}
}

// Target is where the outcome sends the user, or "" for Render.
func (o Outcome) Target() string {
	switch o {
	case Render:
		return ""
	case RedirectLogin:
		return LoginPath
	case RedirectNotAuthorized:
		return NotAuthorizedPath
	default:
		return ""
	}
}

// View is the part of the session the guard looks at.
type View struct {
	IsAuthenticated bool
	Role            domain.Role
}

// ViewOf builds a View from session data.
func ViewOf(isAuthenticated bool, user *domain.User) View {
	if !isAuthenticated || user == nil {
		return View{}
	}
	return View{IsAuthenticated: true, Role: user.Role}
}

// Requirement is what a route asks of the session. Empty Roles means any
// signed-in user. Public routes render for everyone.
type Requirement struct {
	Public bool
	Roles  []domain.Role
}

// Decide returns the outcome for v on a route with requirement req. It uses
// only the role already held; it never asks the server.
func Decide(v View, req Requirement) Outcome {
	if req.Public {
		return Render
	}
	if !v.IsAuthenticated {
		return RedirectLogin
	}
	if len(req.Roles) == 0 {
		return Render
	}
	if v.Role.Validate() == nil && v.Role.In(req.Roles...) {
		return Render
	}
	return RedirectNotAuthorized
}

// HomeFor returns the dashboard path for role. ok is false for roles outside
// the known set.
func HomeFor(role domain.Role) (path string, ok bool) {
	switch role {
	case domain.RoleStudent:
		return "/student", true
	case domain.RoleRecruiter:
		return "/recruiter", true
	case domain.RoleTPO:
		return "/tpo", true
	case domain.RoleAdmin:
		return "/admin", true
	default:
		return "", false
	}
}
