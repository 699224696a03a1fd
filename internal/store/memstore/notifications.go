package memstore

import (
	"context"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type NotificationRepo struct{ db *DB }

func (r *NotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ensureID(&n.ID)
	ensureTime(&n.CreatedAt)
	r.db.notifications.put(n.ID, *n)
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := r.db.notifications.newestFirst(func(n model.Notification) bool { return n.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, x := range r.db.notifications.rows {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notifications.get(id)
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.db.notifications.put(id, n)
	return nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	changed := 0
	for id, n := range r.db.notifications.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.db.notifications.rows[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepo) Delete(_ context.Context, id, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notifications.get(id)
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	r.db.notifications.del(id)
	return nil
}
