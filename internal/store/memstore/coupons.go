package memstore

import (
	"context"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

type CouponRepo struct{ db *DB }

func (r *CouponRepo) Create(_ context.Context, c *model.Coupon) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.couponByCodeLocked(c.Code); ok {
		return repository.ErrDuplicate
	}
	ensureID(&c.ID)
	ensureTime(&c.CreatedAt)
	r.db.coupons.put(c.ID, *c)
	return nil
}

func (db *DB) couponByCodeLocked(code string) (model.Coupon, bool) {
	for _, c := range db.coupons.rows {
		if c.Code == code {
			return c, true
		}
	}
	return model.Coupon{}, false
}

func (r *CouponRepo) GetByID(_ context.Context, id string) (model.Coupon, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.coupons.get(id)
	if !ok {
		return model.Coupon{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *CouponRepo) GetByCode(_ context.Context, code string) (model.Coupon, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.couponByCodeLocked(code)
	if !ok {
		return model.Coupon{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *CouponRepo) List(_ context.Context) ([]model.Coupon, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.coupons.newestFirst(nil), nil
}

func (r *CouponRepo) Update(_ context.Context, id string, patch model.CouponPatch) (model.Coupon, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.coupons.get(id)
	if !ok {
		return model.Coupon{}, repository.ErrNotFound
	}
	patch.Apply(&c)
	r.db.coupons.put(id, c)
	return c, nil
}

func (r *CouponRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.coupons.del(id) {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CouponRepo) Redeem(_ context.Context, red repository.Redemption, check repository.CouponCheck) (model.CouponUsage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.redeemLocked(red, check)
}

// Usages returns the redemption trail of a coupon, oldest first.
func (r *CouponRepo) Usages(couponID string) []model.CouponUsage {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.CouponUsage
	for _, id := range r.db.usages.ids {
		if u := r.db.usages.rows[id]; u.CouponID == couponID {
			out = append(out, u)
		}
	}
	return out
}

func (db *DB) redeemLocked(red repository.Redemption, check repository.CouponCheck) (model.CouponUsage, error) {
	c, ok := db.couponByCodeLocked(red.Code)
	if !ok {
		return model.CouponUsage{}, repository.ErrNotFound
	}
	if red.OrderID != "" {
		for _, u := range db.usages.rows {
			if u.CouponID == c.ID && u.OrderID == red.OrderID {
				return u, repository.ErrAlreadyRedeemed
			}
		}
	}
	if check != nil {
		if err := check(c); err != nil {
			return model.CouponUsage{}, err
		}
	}
	usage := model.CouponUsage{
		ID:         red.UsageID,
		CouponID:   c.ID,
		CouponCode: c.Code,
		UserID:     red.UserID,
		OrderID:    red.OrderID,
		UsedAt:     red.Now,
	}
	ensureID(&usage.ID)
	ensureTime(&usage.UsedAt)
	db.usages.put(usage.ID, usage)
	c.CurrentUses++
	db.coupons.put(c.ID, c)
	return usage, nil
}
