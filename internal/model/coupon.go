package model

import "time"

// Coupon is a percentage discount code.  Code is stored upper-cased and
// is unique.  MaxUses nil means unlimited redemptions.
type Coupon struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	DiscountPercentage float64   `json:"discount_percentage"`
	ExpiryDate         time.Time `json:"expiry_date"`
	IsActive           bool      `json:"is_active"`
	MaxUses            *int      `json:"max_uses"`
	CurrentUses        int       `json:"current_uses"`
	CreatedAt          time.Time `json:"created_at"`
}

// CouponPatch carries the optional fields of a coupon update.
type CouponPatch struct {
	DiscountPercentage *float64
	ExpiryDate         *time.Time
	IsActive           *bool
	// MaxUses is applied when SetMaxUses is true; a nil value clears the cap.
	MaxUses    *int
	SetMaxUses bool
}

// Apply copies the set members of p onto c.
func (p CouponPatch) Apply(c *Coupon) {
	if p.DiscountPercentage != nil {
		c.DiscountPercentage = *p.DiscountPercentage
	}
	if p.ExpiryDate != nil {
		c.ExpiryDate = *p.ExpiryDate
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.SetMaxUses {
		c.MaxUses = p.MaxUses
	}
}

// CouponUsage is one row of the append-only redemption audit trail.
type CouponUsage struct {
	ID         string    `json:"id"`
	CouponID   string    `json:"coupon_id"`
	CouponCode string    `json:"coupon_code"`
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id,omitempty"`
	UsedAt     time.Time `json:"used_at"`
}
