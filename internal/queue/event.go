// Package queue moves notifications through RabbitMQ: the publisher takes
// them off the request path and the consumer persists them.
package queue

import (
	"time"

	"github.com/iliyamo/design-studio/internal/model"
)

// NotificationEvent is the wire form of a notification.  It carries the
// recipient explicitly because model.Notification hides it from clients.
type NotificationEvent struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Type           string `json:"type"`
	RelatedOrderID string `json:"related_order_id,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func eventOf(n model.Notification) NotificationEvent {
	return NotificationEvent{
		ID:             n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Message:        n.Message,
		Type:           string(n.Type),
		RelatedOrderID: n.RelatedOrderID,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Notification converts the event back into the stored model.  An
// unparsable timestamp is replaced by the current time.
func (e NotificationEvent) Notification() model.Notification {
	created, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		created = time.Now().UTC()
	}
	typ := model.NotificationType(e.Type)
	if typ == "" {
		typ = model.NotificationInfo
	}
	return model.Notification{
		ID:             e.ID,
		UserID:         e.UserID,
		Title:          e.Title,
		Message:        e.Message,
		Type:           typ,
		RelatedOrderID: e.RelatedOrderID,
		CreatedAt:      created,
	}
}
