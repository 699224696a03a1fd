package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/design-studio/internal/model"
)

// NotificationRepo persists user notifications.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, message, type, is_read, related_order_id, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.IsRead, nullString(n.RelatedOrderID), n.CreatedAt)
	if isDuplicate(err) {
		// redelivered message
		return nil
	}
	return err
}

// ListByUser returns the newest notifications first, at most limit.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, type, is_read, related_order_id, created_at
		   FROM notifications WHERE user_id=? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n       model.Notification
			typ     string
			orderID sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.IsRead, &orderID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type, n.RelatedOrderID = model.NotificationType(typ), orderID.String
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=FALSE`, userID).Scan(&n)
	return n, err
}

// MarkRead marks one of the user's notifications read.  Marking an
// already read notification succeeds.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM notifications WHERE id=? AND user_id=?`, id, userID).Scan(&exists); err != nil {
		return notFound(err)
	}
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read=TRUE WHERE id=?`, id)
	return err
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE user_id=? AND is_read=FALSE`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *NotificationRepo) Delete(ctx context.Context, id, userID string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=? AND user_id=?`, id, userID))
}
