package memstore

import (
	"context"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type OrderRepo struct{ db *DB }

func (r *OrderRepo) Create(_ context.Context, o *model.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.insertLocked(o)
	return nil
}

func (r *OrderRepo) insertLocked(o *model.Order) {
	ensureID(&o.ID)
	ensureTime(&o.CreatedAt)
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	r.db.orders.put(o.ID, *o)
}

func (r *OrderRepo) CreateWithRedemption(_ context.Context, o *model.Order, red repository.Redemption, check repository.CouponCheck) (model.CouponUsage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ensureID(&o.ID)
	red.OrderID = o.ID
	usage, err := r.db.redeemLocked(red, check)
	if err != nil {
		return usage, err
	}
	r.insertLocked(o)
	return usage, nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.orders.newestFirst(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepo) ListAll(_ context.Context) ([]model.OrderWithOwner, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.db.orders.newestFirst(nil)
	out := make([]model.OrderWithOwner, 0, len(all))
	for _, o := range all {
		row := model.OrderWithOwner{Order: o}
		if u, ok := r.db.users.get(o.UserID); ok {
			row.UserName, row.UserEmail = u.Username, u.Email
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders.get(id)
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	r.db.orders.put(id, o)
	return nil
}
