package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/placement/internal/domain"
)

// ListNotificationsResponse is one page of notifications, newest first
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int                   `json:"total,omitempty"`
	Page          int                   `json:"page,omitempty"`
}

type unreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

// ListNotifications retrieves one page of the current user's notifications
func (c *Client) ListNotifications(ctx context.Context, page, limit int) (*ListNotificationsResponse, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))

	var resp ListNotificationsResponse
	if err := c.do(ctx, http.MethodGet, "/notifications?"+q.Encode(), "notifications.list", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnreadCount retrieves the server-side unread counter
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp unreadCountResponse
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", "notifications.unread_count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MarkNotificationRead marks a single notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := fmt.Sprintf("/notifications/%s/read", url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, path, "notifications.mark_read", nil, nil)
}

// MarkAllNotificationsRead marks every notification of the current user as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPatch, "/notifications/mark-all-read", "notifications.mark_all_read", nil, nil)
}
