package guard

import (
	"github.com/casbin/casbin/v2/util"

	"github.com/felixgeelhaar/placement/internal/domain"
)

// Route maps a URL pattern to a page. Patterns use casbin keyMatch2 syntax:
// ":name" matches one segment and a trailing "*" matches the rest.
type Route struct {
	Pattern     string
	Page        string
	Requirement Requirement
}

var (
	anyone      = Requirement{Public: true}
	signedIn    = Requirement{}
	students    = Requirement{Roles: []domain.Role{domain.RoleStudent}}
	recruiters  = Requirement{Roles: []domain.Role{domain.RoleRecruiter}}
	tpos        = Requirement{Roles: []domain.Role{domain.RoleTPO}}
	admins      = Requirement{Roles: []domain.Role{domain.RoleAdmin}}
	approvers   = Requirement{Roles: []domain.Role{domain.RoleTPO, domain.RoleAdmin}}
	jobManagers = Requirement{Roles: []domain.Role{domain.RoleRecruiter, domain.RoleTPO}}
)

// Routes is the portal's route table. The first matching pattern wins.
var Routes = []Route{
	{Pattern: "/login", Page: "login", Requirement: anyone},
	{Pattern: "/register", Page: "register", Requirement: anyone},
	{Pattern: NotAuthorizedPath, Page: "not-authorized", Requirement: anyone},

	{Pattern: "/dashboard", Page: "dashboard", Requirement: signedIn},
	{Pattern: "/profile", Page: "profile", Requirement: signedIn},
	{Pattern: "/notifications", Page: "notifications", Requirement: signedIn},
	{Pattern: "/events", Page: "events", Requirement: signedIn},
	{Pattern: "/events/:id", Page: "event-detail", Requirement: signedIn},

	{Pattern: "/jobs", Page: "jobs", Requirement: signedIn},
	{Pattern: "/jobs/new", Page: "job-create", Requirement: jobManagers},
	{Pattern: "/jobs/:id/applicants", Page: "job-applicants", Requirement: jobManagers},
	{Pattern: "/jobs/:id", Page: "job-detail", Requirement: signedIn},
	{Pattern: "/applications", Page: "applications", Requirement: students},
	{Pattern: "/approvals", Page: "approvals", Requirement: approvers},

	{Pattern: "/student", Page: "student-dashboard", Requirement: students},
	{Pattern: "/student/*", Page: "student", Requirement: students},
	{Pattern: "/recruiter", Page: "recruiter-dashboard", Requirement: recruiters},
	{Pattern: "/recruiter/*", Page: "recruiter", Requirement: recruiters},
	{Pattern: "/tpo", Page: "tpo-dashboard", Requirement: tpos},
	{Pattern: "/tpo/*", Page: "tpo", Requirement: tpos},
	{Pattern: "/admin", Page: "admin-dashboard", Requirement: admins},
	{Pattern: "/admin/*", Page: "admin", Requirement: admins},
}

// Match returns the first route whose pattern matches path.
func Match(path string) (Route, bool) {
	for _, r := range Routes {
		if util.KeyMatch2(path, r.Pattern) {
			return r, true
		}
	}
	return Route{}, false
}

// Resolution is the guard's answer for a path.
type Resolution struct {
	Route   Route
	Outcome Outcome
	// Target is where to go instead: a redirect, or the role's home for "/" and
	// "/dashboard". Empty when the route renders in place.
	Target string
}

// Resolve matches path and decides the outcome for v. ok is false when no
// route matches.
func Resolve(path string, v View) (res Resolution, ok bool) {
	if path == "/" {
		if !v.IsAuthenticated {
			return Resolution{Route: Route{Pattern: "/", Page: "home"}, Outcome: RedirectLogin, Target: LoginPath}, true
		}
		path = "/dashboard"
	}

	route, ok := Match(path)
	if !ok {
		return Resolution{}, false
	}

	outcome := Decide(v, route.Requirement)
	res = Resolution{Route: route, Outcome: outcome, Target: outcome.Target()}

	if outcome == Render && route.Page == "dashboard" {
		if home, known := HomeFor(v.Role); known {
			res.Target = home
		} else {
			res.Outcome = RedirectNotAuthorized
			res.Target = NotAuthorizedPath
		}
	}
	return res, true
}
