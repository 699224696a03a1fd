package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/service"
)

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := model.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		IsActive:           true,
		ExpiryDate:         now.Add(24 * time.Hour),
		MaxUses:            intPtr(2),
	}
	with := func(mut func(*model.Coupon)) *model.Coupon {
		c := base
		mut(&c)
		return &c
	}

	cases := []struct {
		name   string
		coupon *model.Coupon
		want   service.CouponReason
	}{
		{"missing", nil, service.CouponNotFound},
		{"exhausted", with(func(c *model.Coupon) { c.CurrentUses = 2 }), service.CouponExhausted},
		{"one use left", with(func(c *model.Coupon) { c.CurrentUses = 1 }), service.CouponOK},
		{"unlimited", with(func(c *model.Coupon) { c.MaxUses = nil; c.CurrentUses = 1000 }), service.CouponOK},
		{"expires exactly now", with(func(c *model.Coupon) { c.ExpiryDate = now }), service.CouponOK},
		{"expired", with(func(c *model.Coupon) { c.ExpiryDate = now.Add(-time.Second) }), service.CouponExpired},
		// inactive is reported before expiry and exhaustion
		{"inactive and expired", with(func(c *model.Coupon) {
			c.IsActive = false
			c.ExpiryDate = now.Add(-time.Hour)
			c.CurrentUses = 5
		}), service.CouponInactive},
		{"expired and exhausted", with(func(c *model.Coupon) {
			c.ExpiryDate = now.Add(-time.Hour)
			c.CurrentUses = 5
		}), service.CouponExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.ValidateCoupon(tc.coupon, now))
		})
	}
}

func TestApplyDiscount(t *testing.T) {
	d, final := service.ApplyDiscount(110, 10)
	assert.Equal(t, 11.0, d)
	assert.Equal(t, 99.0, final)

	d, final = service.ApplyDiscount(99.99, 15)
	assert.InDelta(t, 15.0, d, 0.001)
	assert.InDelta(t, 84.99, final, 0.001)

	_, final = service.ApplyDiscount(50, 100)
	assert.Equal(t, 0.0, final)
}

func TestCouponRedeemOnceThenExhausted(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "huda", 3, 0)
	f.coupon(t, "welcome20", 20, intPtr(1))

	v, err := f.coupons.Validate(f.ctx, "WELCOME20")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 20.0, v.DiscountPercentage)
	assert.Equal(t, "20% discount", v.Message)

	usage, err := f.coupons.Redeem(f.ctx, " welcome20 ", u.ID, "O1")
	require.NoError(t, err)
	assert.Equal(t, "O1", usage.OrderID)
	assert.Equal(t, "WELCOME20", usage.CouponCode)

	v, err = f.coupons.Validate(f.ctx, "welcome20")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, service.CouponExhausted, v.Reason)

	// replaying the same order is not a second use
	again, err := f.coupons.Redeem(f.ctx, "WELCOME20", u.ID, "O1")
	require.NoError(t, err)
	assert.Equal(t, usage.ID, again.ID)

	_, err = f.coupons.Redeem(f.ctx, "WELCOME20", u.ID, "O2")
	require.Error(t, err)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	list, err := f.coupons.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].CurrentUses)
	assert.Len(t, f.db.Coupons().Usages(list[0].ID), 1)
}

func TestCouponValidateUnknownCode(t *testing.T) {
	f := newFixture(t)
	v, err := f.coupons.Validate(f.ctx, "NOPE")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, service.CouponNotFound, v.Reason)

	_, err = f.coupons.Validate(f.ctx, "  ")
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestCouponCreateDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	c, err := f.coupons.Create(f.ctx, service.CouponInput{Code: " spring ", DiscountPercentage: 15, MaxUses: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", c.Code)
	assert.True(t, c.IsActive)
	assert.Nil(t, c.MaxUses)
	assert.WithinDuration(t, time.Now().Add(service.DefaultCouponValidity), c.ExpiryDate, time.Minute)

	_, err = f.coupons.Create(f.ctx, service.CouponInput{Code: "SPRING", DiscountPercentage: 5})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	for _, pct := range []float64{0, -5, 101} {
		_, err = f.coupons.Create(f.ctx, service.CouponInput{Code: "X", DiscountPercentage: pct})
		assert.Equal(t, service.KindValidation, service.KindOf(err), "pct %v", pct)
	}
}

func TestCouponUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	c := f.coupon(t, "SUMMER", 10, nil)

	inactive := false
	pct := 25.0
	got, err := f.coupons.Update(f.ctx, c.ID, model.CouponPatch{IsActive: &inactive, DiscountPercentage: &pct, MaxUses: intPtr(3), SetMaxUses: true})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 25.0, got.DiscountPercentage)
	require.NotNil(t, got.MaxUses)
	assert.Equal(t, 3, *got.MaxUses)

	v, err := f.coupons.Validate(f.ctx, "SUMMER")
	require.NoError(t, err)
	assert.Equal(t, service.CouponInactive, v.Reason)

	require.NoError(t, f.coupons.Delete(f.ctx, c.ID))
	assert.Equal(t, service.KindNotFound, service.KindOf(f.coupons.Delete(f.ctx, c.ID)))
	_, err = f.coupons.Update(f.ctx, c.ID, model.CouponPatch{})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}
