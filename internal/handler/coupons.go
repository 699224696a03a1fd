package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/service"
)

type CouponHandler struct {
	coupons *service.Coupons
}

func NewCouponHandler(s *service.Coupons) *CouponHandler {
	return &CouponHandler{coupons: s}
}

type validateReq struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type validateResp struct {
	service.CouponValidation
	DiscountAmount *float64 `json:"discount_amount,omitempty"`
	FinalPrice     *float64 `json:"final_price,omitempty"`
}

// Validate reports whether a code can be redeemed right now.  An invalid
// code is a normal 200 answer carrying the failed rule.  When amount is
// given the discounted price is included.
func (h *CouponHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	v, err := h.coupons.Validate(ctx, req.Code)
	if err != nil {
		return err
	}
	resp := validateResp{CouponValidation: v}
	if v.Valid && req.Amount > 0 {
		discount, final := service.ApplyDiscount(req.Amount, v.DiscountPercentage)
		resp.DiscountAmount, resp.FinalPrice = &discount, &final
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CouponHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	list, err := h.coupons.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CouponHandler) Create(c echo.Context) error {
	var req service.CouponInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	cp, err := h.coupons.Create(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cp)
}

// optionalInt distinguishes an absent member from an explicit null.
type optionalInt struct {
	Set   bool
	Value *int
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	o.Value = &n
	return nil
}

type couponPatchReq struct {
	DiscountPercentage *float64    `json:"discount_percentage"`
	ExpiryDate         *time.Time  `json:"expiry_date"`
	IsActive           *bool       `json:"is_active"`
	MaxUses            optionalInt `json:"max_uses"`
}

// Update applies the members present in the body.  "max_uses": null (or
// a non-positive value) lifts the cap.
func (h *CouponHandler) Update(c echo.Context) error {
	var req couponPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	cp, err := h.coupons.Update(ctx, c.Param("id"), model.CouponPatch{
		DiscountPercentage: req.DiscountPercentage,
		ExpiryDate:         req.ExpiryDate,
		IsActive:           req.IsActive,
		MaxUses:            req.MaxUses.Value,
		SetMaxUses:         req.MaxUses.Set,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *CouponHandler) Delete(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.coupons.Delete(ctx, c.Param("id")); err != nil {
		return err
	}
	return message(c, "coupon deleted")
}
