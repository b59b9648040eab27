package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/guard"
	"github.com/felixgeelhaar/placement/internal/notification"
	"github.com/felixgeelhaar/placement/internal/ux"
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		if !m.session.IsAuthenticated {
			return m.styles.Muted.Render("Signed out.") + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderHome())
	b.WriteString("\n\n")
	b.WriteString(m.renderNotifications())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("🎓 Placement Portal")

	user := m.session.User
	if user == nil {
		return title
	}
	who := m.styles.Subtitle.Render(fmt.Sprintf("%s · %s", user.FullName(), user.Role))

	header := title + "  " + who
	if badge := unreadBadge(m.notif.UnreadCount); badge != "" {
		header += "  " + m.styles.Badge.Render("🔔 "+badge)
	}
	return header
}

// unreadBadge formats the bell counter; zero hides it.
func unreadBadge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 99:
		return "99+"
	default:
		return fmt.Sprint(n)
	}
}

func (m Model) renderHome() string {
	view := guard.ViewOf(m.session.IsAuthenticated, m.session.User)
	res, ok := guard.Resolve("/dashboard", view)
	if !ok || res.Outcome != guard.Render {
		return m.styles.Error.Render("No dashboard is available for this account.")
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(homeHeading(view.Role)))
	b.WriteString(m.styles.Muted.Render("  " + res.Target))
	b.WriteString("\n")
	for _, r := range pagesFor(view) {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %-22s %s", r.Pattern, r.Page)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func homeHeading(role domain.Role) string {
	switch role {
	case domain.RoleStudent:
		return "Student dashboard: browse drives and track applications"
	case domain.RoleRecruiter:
		return "Recruiter dashboard: post jobs and review applicants"
	case domain.RoleTPO:
		return "TPO dashboard: approve accounts and run placement drives"
	case domain.RoleAdmin:
		return "Admin dashboard: oversee users and organizations"
	default:
		return "Dashboard"
	}
}

// pagesFor lists the role-restricted routes the viewer may open.
func pagesFor(v guard.View) []guard.Route {
	var out []guard.Route
	for _, r := range guard.Routes {
		if len(r.Requirement.Roles) == 0 || strings.HasSuffix(r.Pattern, "/*") {
			continue
		}
		if guard.Decide(v, r.Requirement) == guard.Render {
			out = append(out, r)
		}
	}
	return out
}

func (m Model) renderNotifications() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Notifications"))
	b.WriteString("\n")

	items := m.notif.Notifications
	if len(items) == 0 {
		if m.notif.IsLoading {
			b.WriteString(m.styles.Muted.Render("Loading..."))
		} else {
			b.WriteString(m.styles.Muted.Render("No notifications yet"))
		}
		return m.styles.Border.Render(b.String())
	}

	now := m.now()
	for i, n := range items {
		line := m.renderNotification(n, notification.TimeAgo(n.CreatedAt, now))
		if i == m.cursor {
			line = m.styles.Selected.Render("›") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}
	return m.styles.Border.Render(b.String())
}

func (m Model) renderNotification(n domain.Notification, ago string) string {
	marker := " "
	title := lipgloss.NewStyle().Foreground(notification.ColorFor(n.Type))
	if !n.IsRead {
		marker = m.styles.Error.Render("●")
		title = title.Inherit(m.styles.Unread)
	}

	text := title.Render(n.Title)
	if n.Message != "" {
		text += m.styles.Muted.Render(" · " + truncate(n.Message, 60))
	}
	return fmt.Sprintf("%s %s %s %s", marker, notification.IconFor(n.Type), text, m.styles.Muted.Render(ago))
}

func (m Model) renderStatus() string {
	var parts []string
	if m.busy > 0 || m.notif.IsLoading || m.session.IsLoading {
		parts = append(parts, m.spinner.View())
	}
	if m.toast != nil {
		parts = append(parts, m.renderToast(*m.toast))
	} else if m.notif.Error != "" {
		parts = append(parts, m.styles.Error.Render("✗ "+m.notif.Error))
	}
	if m.page > 1 {
		parts = append(parts, m.styles.Muted.Render(fmt.Sprintf("page %d", m.page)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderToast(t ux.Toast) string {
	switch t.Kind {
	case ux.ToastError:
		return m.styles.Error.Render(t.Render(false))
	case ux.ToastSuccess:
		return m.styles.Success.Render(t.Render(false))
	default:
		return t.Render(false)
	}
}

func (m Model) selected() (domain.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.notif.Notifications) {
		return domain.Notification{}, false
	}
	return m.notif.Notifications[m.cursor], true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
