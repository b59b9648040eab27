package platform

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the profile submitted by the registration form
type RegisterRequest struct {
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
	Password       string          `json:"password"`
	Role           domain.Role     `json:"role"`
	OrganizationID string          `json:"organizationId,omitempty"`
	Profile        *domain.Profile `json:"profile,omitempty"`
}

// AuthResponse is returned by login and registration.
// Registration of roles held for approval returns only Message, with no tokens.
type AuthResponse struct {
	User    *domain.User   `json:"user,omitempty"`
	Tokens  *domain.Tokens `json:"tokens,omitempty"`
	Message string         `json:"message,omitempty"`
}

// HasSession reports whether the response carries an identified user and a
// usable token pair
func (r *AuthResponse) HasSession() bool {
	return r != nil && r.User != nil && r.User.ID != "" && r.Tokens.Valid()
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "auth.login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if !resp.HasSession() {
		return nil, errors.New(errors.ErrCodeBadResponse, "login response did not include a user and tokens")
	}
	return &resp, nil
}

// Register creates an account. The caller must branch on HasSession, not on role.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "auth.register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me retrieves the currently authenticated user
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/auth/me", "auth.me", nil, &raw); err != nil {
		return nil, err
	}

	var user domain.User
	if err := decodeEnvelope(raw, "user", &user); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBadResponse, "failed to decode current user", err)
	}
	if user.ID == "" {
		return nil, errors.New(errors.ErrCodeBadResponse, "current user response has no id")
	}
	return &user, nil
}

// Logout invalidates the session server-side. Callers treat failure as best-effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "auth.logout", nil, nil)
}
