package domain

import (
	"fmt"
	"strings"
)

// OrganizationType distinguishes universities from hiring companies.
type OrganizationType string

const (
	OrganizationUniversity OrganizationType = "university"
	OrganizationCompany    OrganizationType = "company"
)

// Validate checks the organization type
func (t OrganizationType) Validate() error {
	switch t {
	case OrganizationUniversity, OrganizationCompany:
		return nil
	default:
		return fmt.Errorf("invalid organization type %q: must be university or company", string(t))
	}
}

// Organization is a university or company registered on the portal.
type Organization struct {
	ID   string           `json:"id" yaml:"id"`
	Name string           `json:"name" yaml:"name"`
	Type OrganizationType `json:"type" yaml:"type"`
}

// Profile holds the role-specific profile attributes of a user.
type Profile struct {
	Phone          string            `json:"phone,omitempty" yaml:"phone,omitempty"`
	Department     string            `json:"department,omitempty" yaml:"department,omitempty"`
	GraduationYear int               `json:"graduationYear,omitempty" yaml:"graduation_year,omitempty"`
	Designation    string            `json:"designation,omitempty" yaml:"designation,omitempty"`
	Skills         []string          `json:"skills,omitempty" yaml:"skills,omitempty"`
	Extra          map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// User is the authenticated identity held by the session.
type User struct {
	ID             string   `json:"id" yaml:"id"`
	FirstName      string   `json:"firstName" yaml:"first_name"`
	LastName       string   `json:"lastName" yaml:"last_name"`
	Email          string   `json:"email" yaml:"email"`
	Role           Role     `json:"role" yaml:"role"`
	OrganizationID string   `json:"organizationId,omitempty" yaml:"organization_id,omitempty"`
	IsApproved     bool     `json:"isApproved" yaml:"is_approved"`
	Profile        *Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	FirstName      *string  `json:"firstName,omitempty"`
	LastName       *string  `json:"lastName,omitempty"`
	Email          *string  `json:"email,omitempty"`
	OrganizationID *string  `json:"organizationId,omitempty"`
	Profile        *Profile `json:"profile,omitempty"`
}

// Merge returns a copy of u with the non-nil fields of p applied.
// The merge is shallow: a provided Profile replaces the existing one.
// Identity fields (ID, Role) are never changed by a patch.
func (u User) Merge(p UserPatch) User {
	out := u
	if p.FirstName != nil {
		out.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		out.LastName = *p.LastName
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.OrganizationID != nil {
		out.OrganizationID = *p.OrganizationID
	}
	if p.Profile != nil {
		profile := *p.Profile
		out.Profile = &profile
	}
	return out
}

// Tokens is the bearer credential pair issued by the auth endpoints.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both halves of the pair are present.
func (t *Tokens) Valid() bool {
	return t != nil && t.AccessToken != "" && t.RefreshToken != ""
}
