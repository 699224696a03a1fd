package service

import (
	"context"
	"time"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// The interfaces below are implemented by the MySQL repositories in
// internal/repository and by the in-process store in internal/store/memstore.
// Errors are the sentinels defined in internal/repository.

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateQuotaSettings(ctx context.Context, id string, limit *int, unlimited *bool) (model.User, error)
	UpdateMeasurements(ctx context.Context, id string, m model.Measurements) (model.User, error)
}

// QuotaStore performs the atomic counter operations of the quota ledger.
type QuotaStore interface {
	Get(ctx context.Context, userID string) (model.Quota, error)
	// Reserve admits hold iff the user is unlimited or
	// used + active holds < limit, in a single atomic step.
	Reserve(ctx context.Context, hold model.QuotaHold, now time.Time) (model.Quota, error)
	// Commit removes the hold and increments designs_used atomically.
	Commit(ctx context.Context, userID, token string) (model.Quota, error)
	Cancel(ctx context.Context, token string) error
	// Decrement lowers designs_used by one, floored at zero.
	Decrement(ctx context.Context, userID string) (model.Quota, error)
}

// DesignStore persists user designs.
type DesignStore interface {
	CreateWithOrder(ctx context.Context, d *model.Design, o *model.Order) error
	ListByUser(ctx context.Context, userID string) ([]model.Design, error)
	ListAll(ctx context.Context) ([]model.DesignWithOwner, error)
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	// DeleteAndRelease removes the design and decrements its owner's
	// designs_used in one unit.  An empty ownerID skips the ownership check.
	DeleteAndRelease(ctx context.Context, id, ownerID string) (model.Design, error)
}

// OrderStore persists orders.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	// CreateWithRedemption redeems the coupon and inserts the order in one
	// unit.  check runs against the locked coupon before anything is written.
	CreateWithRedemption(ctx context.Context, o *model.Order, r repository.Redemption, check repository.CouponCheck) (model.CouponUsage, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.OrderWithOwner, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// CouponStore persists coupons and their redemption trail.
type CouponStore interface {
	Create(ctx context.Context, c *model.Coupon) error
	GetByID(ctx context.Context, id string) (model.Coupon, error)
	GetByCode(ctx context.Context, code string) (model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, id string, patch model.CouponPatch) (model.Coupon, error)
	Delete(ctx context.Context, id string) error
	// Redeem records a usage row and increments current_uses atomically.
	// A second redemption for the same (coupon, order) returns the first
	// usage together with repository.ErrAlreadyRedeemed.
	Redeem(ctx context.Context, r repository.Redemption, check repository.CouponCheck) (model.CouponUsage, error)
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
}

// ShowcaseStore persists curated showcase designs.
type ShowcaseStore interface {
	ListActive(ctx context.Context, limit int) ([]model.ShowcaseDesign, error)
	List(ctx context.Context) ([]model.ShowcaseDesign, error)
	Create(ctx context.Context, d *model.ShowcaseDesign) error
	Update(ctx context.Context, id string, patch model.ShowcasePatch, now time.Time) (model.ShowcaseDesign, error)
	Delete(ctx context.Context, id string) error
	ToggleFeatured(ctx context.Context, id string, now time.Time) (bool, error)
}

// StatsStore computes admin rollups.
type StatsStore interface {
	Snapshot(ctx context.Context) (model.Stats, error)
}

// Stores bundles every persistence dependency of the services.
type Stores struct {
	Users         UserStore
	Quota         QuotaStore
	Designs       DesignStore
	Orders        OrderStore
	Coupons       CouponStore
	Notifications NotificationStore
	Showcase      ShowcaseStore
	Stats         StatsStore
}
