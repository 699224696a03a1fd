package memstore

import (
	"context"

	"github.com/iliyamo/design-studio/internal/model"
)

type StatsRepo struct{ db *DB }

func (r *StatsRepo) Snapshot(_ context.Context) (model.Stats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s := model.Stats{
		TotalUsers:    len(r.db.users.rows),
		TotalOrders:   len(r.db.orders.rows),
		TotalDesigns:  len(r.db.designs.rows),
		TotalShowcase: len(r.db.showcase.rows),
		TotalCoupons:  len(r.db.coupons.rows),
	}
	for _, o := range r.db.orders.rows {
		switch o.Status {
		case model.OrderPending:
			s.PendingOrders++
		case model.OrderCompleted:
			s.CompletedOrders++
		}
		s.TotalRevenue += o.FinalPrice
	}
	return s, nil
}
