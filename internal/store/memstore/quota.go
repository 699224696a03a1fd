package memstore

import (
	"context"
	"time"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type QuotaRepo struct{ db *DB }

func (r *QuotaRepo) Get(_ context.Context, userID string) (model.Quota, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users.get(userID)
	if !ok {
		return model.Quota{}, repository.ErrNotFound
	}
	return model.QuotaOf(u), nil
}

func (r *QuotaRepo) Reserve(_ context.Context, hold model.QuotaHold, now time.Time) (model.Quota, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users.get(hold.UserID)
	if !ok {
		return model.Quota{}, repository.ErrNotFound
	}

	active := 0
	for token, h := range r.db.holds.rows {
		if !h.ExpiresAt.After(now) {
			r.db.holds.del(token)
			continue
		}
		if h.UserID == hold.UserID {
			active++
		}
	}
	if !u.IsUnlimited && u.DesignsUsed+active >= u.DesignsLimit {
		return model.QuotaOf(u), repository.ErrQuotaExceeded
	}
	if _, dup := r.db.holds.get(hold.Token); dup {
		return model.QuotaOf(u), repository.ErrDuplicate
	}
	ensureID(&hold.ID)
	if hold.CreatedAt.IsZero() {
		hold.CreatedAt = now
	}
	r.db.holds.put(hold.Token, hold)
	return model.QuotaOf(u), nil
}

func (r *QuotaRepo) Commit(_ context.Context, userID, token string) (model.Quota, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	h, ok := r.db.holds.get(token)
	if !ok || h.UserID != userID {
		return model.Quota{}, repository.ErrHoldNotFound
	}
	u, ok := r.db.users.get(userID)
	if !ok {
		return model.Quota{}, repository.ErrNotFound
	}
	r.db.holds.del(token)
	u.DesignsUsed++
	r.db.users.put(userID, u)
	return model.QuotaOf(u), nil
}

func (r *QuotaRepo) Cancel(_ context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.holds.del(token)
	return nil
}

func (r *QuotaRepo) Decrement(_ context.Context, userID string) (model.Quota, error) {
	return r.adjust(userID, -1)
}

func (r *QuotaRepo) adjust(userID string, delta int) (model.Quota, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users.get(userID)
	if !ok {
		return model.Quota{}, repository.ErrNotFound
	}
	u.DesignsUsed = max(u.DesignsUsed+delta, 0)
	r.db.users.put(userID, u)
	return model.QuotaOf(u), nil
}

// releaseLocked decrements designs_used, floored at zero.  Callers hold db.mu.
func (db *DB) releaseLocked(userID string) {
	if u, ok := db.users.get(userID); ok && u.DesignsUsed > 0 {
		u.DesignsUsed--
		db.users.put(userID, u)
	}
}
