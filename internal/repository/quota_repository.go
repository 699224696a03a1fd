package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/design-studio/internal/model"
)

// QuotaRepo implements the quota ledger on the users and quota_holds
// tables.  Every mutation locks the user row first so admissions for one
// user are serialized.
type QuotaRepo struct{ db *sql.DB }

func NewQuotaRepo(db *sql.DB) *QuotaRepo { return &QuotaRepo{db: db} }

func lockQuota(ctx context.Context, tx *sql.Tx, userID string) (model.Quota, error) {
	q := model.Quota{UserID: userID}
	err := tx.QueryRowContext(ctx,
		`SELECT designs_limit, designs_used, is_unlimited FROM users WHERE id=? FOR UPDATE`, userID).
		Scan(&q.Limit, &q.Used, &q.IsUnlimited)
	return q, notFound(err)
}

func (r *QuotaRepo) Get(ctx context.Context, userID string) (model.Quota, error) {
	q := model.Quota{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT designs_limit, designs_used, is_unlimited FROM users WHERE id=?`, userID).
		Scan(&q.Limit, &q.Used, &q.IsUnlimited)
	return q, notFound(err)
}

// Reserve locks the user, drops that user's expired holds and inserts hold
// iff is_unlimited or designs_used + active holds < designs_limit.
func (r *QuotaRepo) Reserve(ctx context.Context, hold model.QuotaHold, now time.Time) (model.Quota, error) {
	var q model.Quota
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if q, err = lockQuota(ctx, tx, hold.UserID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM quota_holds WHERE user_id=? AND expires_at<=?`, hold.UserID, now); err != nil {
			return err
		}
		var active int
		if err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM quota_holds WHERE user_id=?`, hold.UserID).Scan(&active); err != nil {
			return err
		}
		if !q.IsUnlimited && q.Used+active >= q.Limit {
			return ErrQuotaExceeded
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quota_holds (id, user_id, token, expires_at, created_at) VALUES (?,?,?,?,?)`,
			hold.ID, hold.UserID, hold.Token, hold.ExpiresAt, now)
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	})
	return q, err
}

// Commit deletes the hold and charges one slot.  A token that is no longer
// held (already committed, cancelled, or purged) charges nothing.
func (r *QuotaRepo) Commit(ctx context.Context, userID, token string) (model.Quota, error) {
	var q model.Quota
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if q, err = lockQuota(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM quota_holds WHERE token=? AND user_id=?`, token, userID)
		if err := affected(res, err); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrHoldNotFound
			}
			return err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE users SET designs_used = designs_used + 1 WHERE id=?`, userID); err != nil {
			return err
		}
		q.Used++
		return nil
	})
	return q, err
}

func (r *QuotaRepo) Cancel(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM quota_holds WHERE token=?`, token)
	return err
}

// Decrement lowers designs_used, floored at zero.
func (r *QuotaRepo) Decrement(ctx context.Context, userID string) (model.Quota, error) {
	return r.adjust(ctx, userID, releaseSQL)
}

const releaseSQL = `UPDATE users SET designs_used = GREATEST(designs_used - 1, 0) WHERE id=?`

func (r *QuotaRepo) adjust(ctx context.Context, userID, stmt string) (model.Quota, error) {
	if _, err := r.db.ExecContext(ctx, stmt, userID); err != nil {
		return model.Quota{}, err
	}
	return r.Get(ctx, userID)
}
