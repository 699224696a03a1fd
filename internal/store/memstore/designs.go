package memstore

import (
	"context"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type DesignRepo struct{ db *DB }

func (r *DesignRepo) CreateWithOrder(_ context.Context, d *model.Design, o *model.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ensureID(&d.ID)
	ensureTime(&d.CreatedAt)
	r.db.designs.put(d.ID, *d)
	if o != nil {
		ensureID(&o.ID)
		ensureTime(&o.CreatedAt)
		if o.DesignID == "" {
			o.DesignID = d.ID
		}
		r.db.orders.put(o.ID, *o)
	}
	return nil
}

func (r *DesignRepo) ListByUser(_ context.Context, userID string) ([]model.Design, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.designs.newestFirst(func(d model.Design) bool { return d.UserID == userID }), nil
}

func (r *DesignRepo) ListAll(_ context.Context) ([]model.DesignWithOwner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.db.designs.newestFirst(nil)
	out := make([]model.DesignWithOwner, 0, len(all))
	for _, d := range all {
		row := model.DesignWithOwner{Design: d}
		if u, ok := r.db.users.get(d.UserID); ok {
			row.UserName, row.UserEmail = u.Username, u.Email
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *DesignRepo) ToggleFavorite(_ context.Context, id, userID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.designs.get(id)
	if !ok || d.UserID != userID {
		return false, repository.ErrNotFound
	}
	d.IsFavorite = !d.IsFavorite
	r.db.designs.put(id, d)
	return d.IsFavorite, nil
}

func (r *DesignRepo) DeleteAndRelease(_ context.Context, id, ownerID string) (model.Design, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.designs.get(id)
	if !ok || (ownerID != "" && d.UserID != ownerID) {
		return model.Design{}, repository.ErrNotFound
	}
	r.db.designs.del(id)
	r.db.releaseLocked(d.UserID)
	return d, nil
}
