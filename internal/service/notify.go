package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/metrics"
	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// Notifier delivers a notification after the write that caused it has
// committed.  Notify never blocks the caller and never reports failure.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// NewNotification stamps id and creation time.
func NewNotification(userID, title, message string, typ model.NotificationType, orderID string) model.Notification {
	return model.Notification{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Message:        message,
		Type:           typ,
		RelatedOrderID: orderID,
		CreatedAt:      time.Now().UTC(),
	}
}

const notifyWriteTimeout = 5 * time.Second

// DirectNotifier writes notifications to the store from a goroutine.
type DirectNotifier struct {
	store NotificationStore
	log   *zap.Logger
	wg    sync.WaitGroup
}

func NewDirectNotifier(store NotificationStore, log *zap.Logger) *DirectNotifier {
	return &DirectNotifier{store: store, log: log}
}

func (d *DirectNotifier) Notify(ctx context.Context, n model.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyWriteTimeout)
		defer cancel()
		if err := d.store.Create(ctx, &n); err != nil {
			metrics.NotificationsDropped.Inc()
			d.log.Warn("notification write failed",
				zap.String("user_id", n.UserID),
				zap.String("title", n.Title),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched notification has been written or
// dropped.  Used on shutdown.
func (d *DirectNotifier) Wait() { d.wg.Wait() }

// NotificationListLimit caps the notification list.
const NotificationListLimit = 50

// Notifications serves a user's inbox.
type Notifications struct {
	store NotificationStore
}

func NewNotifications(store NotificationStore) *Notifications {
	return &Notifications{store: store}
}

func (s *Notifications) List(ctx context.Context, userID string) ([]model.Notification, error) {
	list, err := s.store.ListByUser(ctx, userID, NotificationListLimit)
	if err != nil {
		return nil, internal("list notifications failed", err)
	}
	return list, nil
}

func (s *Notifications) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, internal("count notifications failed", err)
	}
	return n, nil
}

func (s *Notifications) MarkRead(ctx context.Context, id, userID string) error {
	return notificationResult(s.store.MarkRead(ctx, id, userID), "mark notification failed")
}

func (s *Notifications) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, internal("mark notifications failed", err)
	}
	return n, nil
}

func (s *Notifications) Delete(ctx context.Context, id, userID string) error {
	return notificationResult(s.store.Delete(ctx, id, userID), "delete notification failed")
}

func notificationResult(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound("notification not found")
	}
	return internal(msg, err)
}
