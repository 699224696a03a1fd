package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/design-studio/internal/model"
)

// CouponRepo persists coupons and the coupon_usages audit trail.
type CouponRepo struct{ db *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponColumns = `id, code, discount_percentage, expiry_date, is_active, max_uses, current_uses, created_at`

func scanCoupon(s scanner) (model.Coupon, error) {
	var (
		c       model.Coupon
		maxUses sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.ExpiryDate, &c.IsActive,
		&maxUses, &c.CurrentUses, &c.CreatedAt); err != nil {
		return c, err
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		c.MaxUses = &n
	}
	return c, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO coupons (`+couponColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		c.ID, c.Code, c.DiscountPercentage, c.ExpiryDate, c.IsActive, nullInt(c.MaxUses), c.CurrentUses, c.CreatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *CouponRepo) GetByID(ctx context.Context, id string) (model.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id=?`, id))
	return c, notFound(err)
}

func (r *CouponRepo) GetByCode(ctx context.Context, code string) (model.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code=?`, code))
	return c, notFound(err)
}

func (r *CouponRepo) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update applies the set members of patch and returns the updated coupon.
func (r *CouponRepo) Update(ctx context.Context, id string, patch model.CouponPatch) (model.Coupon, error) {
	var sets []string
	var args []any
	if patch.DiscountPercentage != nil {
		sets = append(sets, "discount_percentage=?")
		args = append(args, *patch.DiscountPercentage)
	}
	if patch.ExpiryDate != nil {
		sets = append(sets, "expiry_date=?")
		args = append(args, *patch.ExpiryDate)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *patch.IsActive)
	}
	if patch.SetMaxUses {
		sets = append(sets, "max_uses=?")
		args = append(args, nullInt(patch.MaxUses))
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, `UPDATE coupons SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...); err != nil {
			return model.Coupon{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *CouponRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id=?`, id))
}

// Redeem records one usage and bumps current_uses in one transaction.
func (r *CouponRepo) Redeem(ctx context.Context, red Redemption, check CouponCheck) (model.CouponUsage, error) {
	var usage model.CouponUsage
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		usage, err = redeemTx(ctx, tx, red, check)
		return err
	})
	return usage, err
}

// redeemTx locks the coupon row, returns the existing usage for a repeated
// (coupon, order) pair, runs check, then inserts the usage and increments
// current_uses.
func redeemTx(ctx context.Context, tx *sql.Tx, red Redemption, check CouponCheck) (model.CouponUsage, error) {
	c, err := scanCoupon(tx.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code=? FOR UPDATE`, red.Code))
	if err != nil {
		return model.CouponUsage{}, notFound(err)
	}

	if red.OrderID != "" {
		var u model.CouponUsage
		var orderID sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT id, coupon_id, coupon_code, user_id, order_id, used_at FROM coupon_usages WHERE coupon_id=? AND order_id=?`,
			c.ID, red.OrderID).Scan(&u.ID, &u.CouponID, &u.CouponCode, &u.UserID, &orderID, &u.UsedAt)
		switch {
		case err == nil:
			u.OrderID = orderID.String
			return u, ErrAlreadyRedeemed
		case !errors.Is(err, sql.ErrNoRows):
			return model.CouponUsage{}, err
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
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO coupon_usages (id, coupon_id, coupon_code, user_id, order_id, used_at) VALUES (?,?,?,?,?,?)`,
		usage.ID, usage.CouponID, usage.CouponCode, usage.UserID, nullString(usage.OrderID), usage.UsedAt); err != nil {
		if isDuplicate(err) {
			return model.CouponUsage{}, ErrAlreadyRedeemed
		}
		return model.CouponUsage{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE coupons SET current_uses = current_uses + 1 WHERE id=?`, c.ID); err != nil {
		return model.CouponUsage{}, err
	}
	return usage, nil
}
