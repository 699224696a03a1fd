package repository

import (
	"context"
	"database/sql"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/design-studio/internal/model"
)

// StatsRepo computes the admin rollup.  The counts run concurrently and
// are not taken from one snapshot; the dashboard tolerates that skew.
type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Snapshot(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int, q string, args ...any) {
		g.Go(func() error {
			return r.db.QueryRowContext(ctx, q, args...).Scan(dst)
		})
	}
	count(&s.TotalUsers, `SELECT COUNT(*) FROM users`)
	count(&s.TotalOrders, `SELECT COUNT(*) FROM orders`)
	count(&s.TotalDesigns, `SELECT COUNT(*) FROM designs`)
	count(&s.TotalShowcase, `SELECT COUNT(*) FROM showcase_designs`)
	count(&s.TotalCoupons, `SELECT COUNT(*) FROM coupons`)
	count(&s.PendingOrders, `SELECT COUNT(*) FROM orders WHERE status=?`, string(model.OrderPending))
	count(&s.CompletedOrders, `SELECT COUNT(*) FROM orders WHERE status=?`, string(model.OrderCompleted))
	g.Go(func() error {
		return r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(final_price), 0) FROM orders`).Scan(&s.TotalRevenue)
	})
	if err := g.Wait(); err != nil {
		return model.Stats{}, err
	}
	return s, nil
}
