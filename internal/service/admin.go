package service

import (
	"context"
	"errors"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// Admin serves the read-mostly admin dashboard.  Reads are snapshots and
// take no locks.
type Admin struct {
	users   UserStore
	designs DesignStore
	orders  OrderStore
	stats   StatsStore
	owner   *Orders
}

func NewAdmin(st Stores, orders *Orders) *Admin {
	return &Admin{users: st.Users, designs: st.Designs, orders: st.Orders, stats: st.Stats, owner: orders}
}

func (a *Admin) Stats(ctx context.Context) (model.Stats, error) {
	s, err := a.stats.Snapshot(ctx)
	if err != nil {
		return model.Stats{}, internal("load stats failed", err)
	}
	return s, nil
}

func (a *Admin) Orders(ctx context.Context) ([]model.OrderWithOwner, error) {
	out, err := a.orders.ListAll(ctx)
	if err != nil {
		return nil, internal("list orders failed", err)
	}
	return out, nil
}

func (a *Admin) Users(ctx context.Context) ([]model.User, error) {
	out, err := a.users.List(ctx)
	if err != nil {
		return nil, internal("list users failed", err)
	}
	return out, nil
}

func (a *Admin) Designs(ctx context.Context) ([]model.DesignWithOwner, error) {
	out, err := a.designs.ListAll(ctx)
	if err != nil {
		return nil, internal("list designs failed", err)
	}
	return out, nil
}

// UpdateOrderStatus sets any of the known statuses; there is no
// transition graph.
func (a *Admin) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if !status.Valid() {
		return validationError("invalid status")
	}
	if err := a.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("order not found")
		}
		return internal("update order status failed", err)
	}
	return nil
}

// UpdateUserQuota changes a user's designs_limit and/or is_unlimited.
func (a *Admin) UpdateUserQuota(ctx context.Context, id string, limit *int, unlimited *bool) (model.User, error) {
	if limit == nil && unlimited == nil {
		return model.User{}, validationError("designs_limit or is_unlimited is required")
	}
	if limit != nil && *limit < 0 {
		return model.User{}, validationError("designs_limit must be >= 0")
	}
	u, err := a.users.UpdateQuotaSettings(ctx, id, limit, unlimited)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, notFound("user not found")
		}
		return model.User{}, internal("update user quota failed", err)
	}
	return u, nil
}

// DeleteDesign removes any user's design and releases its quota slot.
func (a *Admin) DeleteDesign(ctx context.Context, id string) error {
	return a.owner.DeleteDesign(ctx, id, "")
}
