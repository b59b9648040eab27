package domain

import "time"

// NotificationType is the category of an in-app notification.
type NotificationType string

const (
	NotificationApplication NotificationType = "application"
	NotificationJob         NotificationType = "job"
	NotificationEvent       NotificationType = "event"
	NotificationApproval    NotificationType = "approval"
	NotificationSystem      NotificationType = "system"
)

// Normalize maps unknown categories onto NotificationSystem so rendering never fails.
func (t NotificationType) Normalize() NotificationType {
	switch t {
	case NotificationApplication, NotificationJob, NotificationEvent, NotificationApproval, NotificationSystem:
		return t
	default:
		return NotificationSystem
	}
}

// Notification is one in-app notification record.
type Notification struct {
	ID        string           `json:"id" yaml:"id"`
	Title     string           `json:"title" yaml:"title"`
	Message   string           `json:"message" yaml:"message"`
	Type      NotificationType `json:"type" yaml:"type"`
	IsRead    bool             `json:"isRead" yaml:"is_read"`
	CreatedAt time.Time        `json:"createdAt" yaml:"created_at"`
}

// CountUnread returns the number of records with IsRead == false.
func CountUnread(items []Notification) int {
	n := 0
	for _, item := range items {
		if !item.IsRead {
			n++
		}
	}
	return n
}
