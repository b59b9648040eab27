package platform

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
)

// ListOrganizations retrieves the universities and companies registrations can join
func (c *Client) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/organizations", "organizations.list", nil, &raw); err != nil {
		return nil, err
	}

	var orgs []domain.Organization
	if err := decodeEnvelope(raw, "organizations", &orgs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBadResponse, "failed to decode organizations", err)
	}
	return orgs, nil
}
