package model

import "time"

// OrderStatus enumerates the states an order can be in.  Admins may set
// any of them at any time; there is no enforced transition graph.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order records a purchase request for a design.  Prices are in the
// shop currency; no payment is captured.
//
// Fields:
//
//	ID                – application level UUID.
//	UserID            – customer who placed the order.
//	DesignID          – saved design, empty when ordered straight from a preview.
//	DesignImageBase64 – image snapshot at the time of ordering.
//	Price             – catalog price before discount.
//	Discount          – amount removed by the coupon.
//	FinalPrice        – Price minus Discount, floored at 0.
//	CouponCode        – redeemed coupon, if any.
type Order struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	DesignID          string      `json:"design_id,omitempty"`
	DesignImageBase64 string      `json:"design_image_base64"`
	Prompt            string      `json:"prompt"`
	PhoneNumber       string      `json:"phone_number"`
	Size              string      `json:"size"`
	Color             string      `json:"color"`
	Price             float64     `json:"price"`
	Discount          float64     `json:"discount"`
	FinalPrice        float64     `json:"final_price"`
	CouponCode        string      `json:"coupon_code,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}

// OrderWithOwner decorates an order with its customer for admin listings.
type OrderWithOwner struct {
	Order
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
