package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/guard"
	"github.com/felixgeelhaar/placement/internal/notification"
)

const dateLayout = "2006-01-02"

// notificationTable renders a page of notifications.
type notificationTable struct {
	Notifications []domain.Notification `json:"notifications" yaml:"notifications"`
	UnreadCount   int                   `json:"unreadCount" yaml:"unread_count"`
	Page          int                   `json:"page" yaml:"page"`

	now time.Time
}

func (t notificationTable) Headers() []string {
	return []string{"", "ID", "TYPE", "TITLE", "WHEN"}
}

func (t notificationTable) Rows() [][]string {
	rows := make([][]string, len(t.Notifications))
	for i, n := range t.Notifications {
		mark := " "
		if !n.IsRead {
			mark = "●"
		}
		rows[i] = []string{
			mark,
			n.ID,
			notification.IconFor(n.Type) + " " + string(n.Type),
			n.Title,
			notification.TimeAgo(n.CreatedAt, t.now),
		}
	}
	return rows
}

type unreadResult struct {
	UnreadCount int `json:"unreadCount" yaml:"unread_count"`
}

func (r unreadResult) String() string {
	return strconv.Itoa(r.UnreadCount)
}

type organizationTable []domain.Organization

func (t organizationTable) Headers() []string {
	return []string{"ID", "NAME", "TYPE"}
}

func (t organizationTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, org := range t {
		rows[i] = []string{org.ID, org.Name, string(org.Type)}
	}
	return rows
}

type jobTable struct {
	Jobs  []domain.Job `json:"jobs" yaml:"jobs"`
	Total int          `json:"total" yaml:"total"`
	Page  int          `json:"page" yaml:"page"`
}

func (t jobTable) Headers() []string {
	return []string{"ID", "TITLE", "COMPANY", "TYPE", "LOCATION", "DEADLINE"}
}

func (t jobTable) Rows() [][]string {
	rows := make([][]string, len(t.Jobs))
	for i, j := range t.Jobs {
		deadline := "-"
		if !j.Deadline.IsZero() {
			deadline = j.Deadline.Format(dateLayout)
		}
		rows[i] = []string{j.ID, j.Title, j.Company, string(j.Type), j.Location, deadline}
	}
	return rows
}

type pendingTable []domain.PendingUser

func (t pendingTable) Headers() []string {
	return []string{"ID", "NAME", "EMAIL", "ROLE", "REQUESTED"}
}

func (t pendingTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, u := range t {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		rows[i] = []string{u.ID, name, u.Email, u.Role.Label(), u.CreatedAt.Format(dateLayout)}
	}
	return rows
}

// routeEntry is one row of the route table.
type routeEntry struct {
	Pattern string   `json:"pattern" yaml:"pattern"`
	Page    string   `json:"page" yaml:"page"`
	Access  string   `json:"access" yaml:"access"`
	Roles   []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

type routeTable []routeEntry

func newRouteTable(routes []guard.Route) routeTable {
	out := make(routeTable, len(routes))
	for i, r := range routes {
		out[i] = routeEntry{
			Pattern: r.Pattern,
			Page:    r.Page,
			Access:  access(r.Requirement),
			Roles:   roleNames(r.Requirement.Roles),
		}
	}
	return out
}

func (t routeTable) Headers() []string {
	return []string{"PATTERN", "PAGE", "ACCESS"}
}

func (t routeTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{r.Pattern, r.Page, r.Access}
	}
	return rows
}

func access(req guard.Requirement) string {
	switch {
	case req.Public:
		return "public"
	case len(req.Roles) == 0:
		return "signed in"
	default:
		return strings.Join(roleNames(req.Roles), ", ")
	}
}

func roleNames(roles []domain.Role) []string {
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
