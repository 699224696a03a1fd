package model

import "time"

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a message created by the system on behalf of a user.
type Notification struct {
	ID             string           `json:"id"`
	UserID         string           `json:"-"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	IsRead         bool             `json:"is_read"`
	RelatedOrderID string           `json:"related_order_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
