package repository

import (
	"time"

	"github.com/iliyamo/design-studio/internal/model"
)

// Redemption identifies a single coupon redemption.  Code must already be
// normalized (trimmed, upper-cased).  OrderID may be empty for a
// redemption that is not tied to an order.
type Redemption struct {
	UsageID string
	Code    string
	UserID  string
	OrderID string
	Now     time.Time
}

// CouponCheck is evaluated against the locked coupon row before a
// redemption is recorded.  A non-nil error aborts the redemption and is
// returned unchanged to the caller.
type CouponCheck func(c model.Coupon) error
