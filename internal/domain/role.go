package domain

import "fmt"

// Role is the portal role of an account.
// This is a value object over a closed set; every switch on Role must be exhaustive.
type Role string

// Portal roles
const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleTPO       Role = "tpo" // Training & Placement Officer
	RoleAdmin     Role = "admin"
)

// AllRoles returns every role in display order.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleRecruiter, RoleTPO, RoleAdmin}
}

// ParseRole creates a Role value object with validation
func ParseRole(value string) (Role, error) {
	r := Role(value)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate checks if the role is one of the known roles
func (r Role) Validate() error {
	switch r {
	case RoleStudent, RoleRecruiter, RoleTPO, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("invalid role %q: must be student, recruiter, tpo, or admin", string(r))
	}
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// Label returns the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleRecruiter:
		return "Recruiter"
	case RoleTPO:
		return "Training & Placement Officer"
	case RoleAdmin:
		return "Administrator"
	}
	return "Unknown"
}

// RequiresApproval reports whether self-registration for the role is normally held for manual
// approval. It is informational only: the server decides, and the session store branches on the
// registration response rather than on this value.
func (r Role) RequiresApproval() bool {
	switch r {
	case RoleRecruiter, RoleTPO:
		return true
	case RoleStudent, RoleAdmin:
		return false
	}
	return false
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
