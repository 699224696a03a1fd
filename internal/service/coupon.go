package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/design-studio/internal/metrics"
	"github.com/iliyamo/design-studio/internal/model"
	"github.com/iliyamo/design-studio/internal/repository"
)

// CouponReason names the first rule a coupon failed.
type CouponReason string

const (
	CouponOK        CouponReason = ""
	CouponNotFound  CouponReason = "not_found"
	CouponInactive  CouponReason = "inactive"
	CouponExpired   CouponReason = "expired"
	CouponExhausted CouponReason = "exhausted_uses"
)

var couponMessages = map[CouponReason]string{
	CouponNotFound:  "coupon code is not valid",
	CouponInactive:  "coupon is not active",
	CouponExpired:   "coupon has expired",
	CouponExhausted: "coupon usage limit reached",
}

// Message returns the user-facing text for r.
func (r CouponReason) Message() string { return couponMessages[r] }

// DefaultCouponValidity applies when a coupon is created without an expiry.
const DefaultCouponValidity = 365 * 24 * time.Hour

// CouponValidation is the outcome of validating a code.
type CouponValidation struct {
	Valid              bool         `json:"valid"`
	DiscountPercentage float64      `json:"discount_percentage,omitempty"`
	Reason             CouponReason `json:"reason,omitempty"`
	Message            string       `json:"message"`
}

// ValidateCoupon applies the redemption rules in order: existence,
// activity, expiry, usage cap.  The first failing rule wins.  c is nil
// when no coupon matched the code.
func ValidateCoupon(c *model.Coupon, now time.Time) CouponReason {
	switch {
	case c == nil:
		return CouponNotFound
	case !c.IsActive:
		return CouponInactive
	case now.After(c.ExpiryDate):
		return CouponExpired
	case c.MaxUses != nil && c.CurrentUses >= *c.MaxUses:
		return CouponExhausted
	}
	return CouponOK
}

// NormalizeCode trims and upper-cases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ApplyDiscount returns the discount rounded to cents and the resulting
// price, floored at zero.
func ApplyDiscount(price, pct float64) (discount, final float64) {
	discount = math.Round(price*pct) / 100
	final = math.Max(0, math.Round((price-discount)*100)/100)
	return discount, final
}

// Coupons implements coupon validation, redemption and admin management.
type Coupons struct {
	store CouponStore
	now   func() time.Time
}

func NewCoupons(store CouponStore) *Coupons {
	return &Coupons{store: store, now: time.Now}
}

func couponError(r CouponReason) *Error {
	if r == CouponNotFound {
		return notFound(r.Message())
	}
	return validationError(r.Message())
}

// Validate looks the code up and evaluates it against the current time.
func (s *Coupons) Validate(ctx context.Context, code string) (CouponValidation, error) {
	code = NormalizeCode(code)
	if code == "" {
		return CouponValidation{}, validationError("coupon code is required")
	}
	c, err := s.store.GetByCode(ctx, code)
	var cp *model.Coupon
	switch {
	case err == nil:
		cp = &c
	case !errors.Is(err, repository.ErrNotFound):
		return CouponValidation{}, internal("load coupon failed", err)
	}
	if reason := ValidateCoupon(cp, s.now()); reason != CouponOK {
		return CouponValidation{Reason: reason, Message: reason.Message()}, nil
	}
	return CouponValidation{
		Valid:              true,
		DiscountPercentage: c.DiscountPercentage,
		Message:            formatPercent(c.DiscountPercentage) + "% discount",
	}, nil
}

// Redeem records one use of code for orderID.  The rules are re-checked
// against the locked coupon row; a repeated redemption for the same order
// returns the original usage without counting again.
func (s *Coupons) Redeem(ctx context.Context, code, userID, orderID string) (model.CouponUsage, error) {
	red := repository.Redemption{
		UsageID: uuid.NewString(),
		Code:    NormalizeCode(code),
		UserID:  userID,
		OrderID: orderID,
		Now:     s.now().UTC(),
	}
	usage, err := s.store.Redeem(ctx, red, s.check(red.Now, nil))
	return usage, s.redeemResult(err)
}

// check builds the callback evaluated against the locked coupon.  apply,
// when set, runs after the rules pass.
func (s *Coupons) check(now time.Time, apply func(model.Coupon)) repository.CouponCheck {
	return func(c model.Coupon) error {
		if reason := ValidateCoupon(&c, now); reason != CouponOK {
			return couponError(reason)
		}
		if apply != nil {
			apply(c)
		}
		return nil
	}
}

func (s *Coupons) redeemResult(err error) error {
	var se *Error
	switch {
	case err == nil:
		metrics.CouponRedemptions.WithLabelValues("redeemed").Inc()
		return nil
	case errors.Is(err, repository.ErrAlreadyRedeemed):
		metrics.CouponRedemptions.WithLabelValues("duplicate").Inc()
		return nil
	case errors.Is(err, repository.ErrNotFound):
		metrics.CouponRedemptions.WithLabelValues("rejected").Inc()
		return validationError(CouponNotFound.Message())
	case errors.As(err, &se):
		metrics.CouponRedemptions.WithLabelValues("rejected").Inc()
		return se
	}
	return internal("redeem coupon failed", err)
}

// CouponInput carries the fields of an admin coupon create.
type CouponInput struct {
	Code               string     `json:"code"`
	DiscountPercentage float64    `json:"discount_percentage"`
	ExpiryDate         *time.Time `json:"expiry_date"`
	MaxUses            *int       `json:"max_uses"`
	IsActive           *bool      `json:"is_active"`
}

// Create adds a coupon.  Codes are stored upper-cased, a missing expiry
// defaults to one year out and a non-positive max_uses means unlimited.
func (s *Coupons) Create(ctx context.Context, in CouponInput) (model.Coupon, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return model.Coupon{}, validationError("coupon code and discount percentage are required")
	}
	if err := validPercent(in.DiscountPercentage); err != nil {
		return model.Coupon{}, err
	}
	now := s.now().UTC()
	c := model.Coupon{
		ID:                 uuid.NewString(),
		Code:               code,
		DiscountPercentage: in.DiscountPercentage,
		ExpiryDate:         now.Add(DefaultCouponValidity),
		IsActive:           true,
		MaxUses:            normalizeMaxUses(in.MaxUses),
		CreatedAt:          now,
	}
	if in.ExpiryDate != nil {
		c.ExpiryDate = in.ExpiryDate.UTC()
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.store.Create(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Coupon{}, validationError("coupon code already exists")
		}
		return model.Coupon{}, internal("create coupon failed", err)
	}
	return c, nil
}

func (s *Coupons) List(ctx context.Context) ([]model.Coupon, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, internal("list coupons failed", err)
	}
	return list, nil
}

func (s *Coupons) Update(ctx context.Context, id string, patch model.CouponPatch) (model.Coupon, error) {
	if patch.DiscountPercentage != nil {
		if err := validPercent(*patch.DiscountPercentage); err != nil {
			return model.Coupon{}, err
		}
	}
	if patch.SetMaxUses {
		patch.MaxUses = normalizeMaxUses(patch.MaxUses)
	}
	c, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Coupon{}, notFound("coupon not found")
		}
		return model.Coupon{}, internal("update coupon failed", err)
	}
	return c, nil
}

func (s *Coupons) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("coupon not found")
		}
		return internal("delete coupon failed", err)
	}
	return nil
}

func validPercent(p float64) error {
	if p <= 0 || p > 100 || math.IsNaN(p) {
		return validationError("discount percentage must be between 0 and 100")
	}
	return nil
}

func normalizeMaxUses(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	n := *v
	return &n
}

func formatPercent(p float64) string {
	if p == math.Trunc(p) {
		return strconv.FormatFloat(p, 'f', 0, 64)
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}
