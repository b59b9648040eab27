package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/platform"
	"github.com/felixgeelhaar/placement/internal/tokenstore"
)

// OrganizationLister is the public endpoint the portal check calls.
type OrganizationLister interface {
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
	BaseURL() string
}

// PortalChecker verifies the portal API answers an unauthenticated request.
type PortalChecker struct {
	api OrganizationLister
}

// NewPortalChecker creates a portal API checker.
func NewPortalChecker(api OrganizationLister) *PortalChecker {
	return &PortalChecker{api: api}
}

func (c *PortalChecker) Name() string { return "portal-api" }

func (c *PortalChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	orgs, err := c.api.ListOrganizations(ctx)
	latency := time.Since(start)

	if err != nil {
		return Unhealthy("portal API unreachable: "+platform.Describe(err)).
			WithDetail("url", c.api.BaseURL()).
			WithLatency(latency)
	}
	return Healthy("portal API reachable").
		WithDetail("url", c.api.BaseURL()).
		WithDetail("organizations", fmt.Sprint(len(orgs))).
		WithLatency(latency)
}

// TokenFileChecker inspects the persisted session file without contacting
// the server.
type TokenFileChecker struct {
	store *tokenstore.FileStore
	now   func() time.Time
}

// NewTokenFileChecker creates a checker for the token file at path.
func NewTokenFileChecker(path string, now func() time.Time) *TokenFileChecker {
	if now == nil {
		now = time.Now
	}
	return &TokenFileChecker{store: tokenstore.NewFileStore(path), now: now}
}

func (c *TokenFileChecker) Name() string { return "token-file" }

func (c *TokenFileChecker) Check(_ context.Context) *Result {
	path := c.store.Path()
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Healthy("no saved session").WithDetail("path", path)
	}
	if err != nil {
		return Unhealthy("cannot stat token file: "+err.Error()).WithDetail("path", path)
	}

	tokens, err := c.store.Load()
	if err != nil {
		return Unhealthy("token file is unreadable: "+err.Error()).WithDetail("path", path)
	}
	if tokens == nil {
		return Degraded("token file holds no usable session").WithDetail("path", path)
	}

	result := Healthy("saved session found").WithDetail("path", path)
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		result = Degraded(fmt.Sprintf("token file is readable by others (%#o)", perm)).WithDetail("path", path)
	}
	if claims, ok := tokenstore.Inspect(tokens.RefreshToken); ok && claims.HasExpiry() {
		result.WithDetail("refresh_expires", claims.ExpiresAt.Format(time.RFC3339))
		if claims.ExpiredAt(c.now()) {
			return Degraded("saved session has expired; sign in again").WithDetail("path", path)
		}
	}
	return result
}

// Restorer restores the persisted session.
type Restorer interface {
	Startup(ctx context.Context) error
	IsAuthenticated() bool
}

// SessionChecker restores the saved session against the server.
type SessionChecker struct {
	sessions Restorer
}

// NewSessionChecker creates a session checker.
func NewSessionChecker(sessions Restorer) *SessionChecker {
	return &SessionChecker{sessions: sessions}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	if err := c.sessions.Startup(ctx); err != nil {
		return Degraded("saved session was rejected: " + err.Error())
	}
	if !c.sessions.IsAuthenticated() {
		return Degraded("not signed in")
	}
	return Healthy("signed in")
}
