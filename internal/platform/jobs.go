package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
)

// ListJobsResponse represents one page of job postings
type ListJobsResponse struct {
	Jobs  []domain.Job `json:"jobs"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
}

// ListJobs retrieves job postings matching the query
func (c *Client) ListJobs(ctx context.Context, q domain.JobQuery) (*ListJobsResponse, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", fmt.Sprint(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", fmt.Sprint(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Type != "" {
		values.Set("type", string(q.Type))
	}

	path := "/jobs"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp ListJobsResponse
	if err := c.do(ctx, http.MethodGet, path, "jobs.list", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Page == 0 {
		resp.Page = q.Page
	}
	return &resp, nil
}

// ApplyToJob submits the current student's application to a job
func (c *Client) ApplyToJob(ctx context.Context, jobID string) (*domain.Application, error) {
	var raw json.RawMessage
	body := map[string]string{"jobId": jobID}
	if err := c.do(ctx, http.MethodPost, "/applications", "applications.create", body, &raw); err != nil {
		return nil, err
	}

	var app domain.Application
	if err := decodeEnvelope(raw, "application", &app); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBadResponse, "failed to decode application", err)
	}
	return &app, nil
}

// ListPendingUsers retrieves accounts awaiting approval (TPO and admin only)
func (c *Client) ListPendingUsers(ctx context.Context) ([]domain.PendingUser, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/users/pending", "users.pending", nil, &raw); err != nil {
		return nil, err
	}

	var users []domain.PendingUser
	if err := decodeEnvelope(raw, "users", &users); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBadResponse, "failed to decode pending users", err)
	}
	return users, nil
}

// ApproveUser approves a pending account
func (c *Client) ApproveUser(ctx context.Context, userID string) error {
	path := fmt.Sprintf("/users/%s/approve", url.PathEscape(userID))
	return c.do(ctx, http.MethodPatch, path, "users.approve", nil, nil)
}
