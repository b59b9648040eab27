package notification

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/placement/internal/domain"
)

// TimeAgo renders how long before now t happened.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

// IconFor returns the glyph shown next to a notification of type t.
func IconFor(t domain.NotificationType) string {
	switch t.Normalize() {
	case domain.NotificationApplication:
		return "📄"
	case domain.NotificationJob:
		return "💼"
	case domain.NotificationEvent:
		return "📅"
	case domain.NotificationApproval:
		return "✅"
	default:
		return "🔔"
	}
}

// ColorFor returns the accent color for a notification of type t.
func ColorFor(t domain.NotificationType) lipgloss.Color {
	switch t.Normalize() {
	case domain.NotificationApplication:
		return lipgloss.Color("33") // blue
	case domain.NotificationJob:
		return lipgloss.Color("42") // green
	case domain.NotificationEvent:
		return lipgloss.Color("135") // purple
	case domain.NotificationApproval:
		return lipgloss.Color("214") // amber
	default:
		return lipgloss.Color("245") // gray
	}
}
