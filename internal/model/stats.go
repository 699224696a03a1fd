package model

// Stats is the admin dashboard rollup.
type Stats struct {
	TotalUsers      int     `json:"total_users"`
	TotalOrders     int     `json:"total_orders"`
	TotalDesigns    int     `json:"total_designs"`
	TotalShowcase   int     `json:"total_showcase"`
	TotalCoupons    int     `json:"total_coupons"`
	PendingOrders   int     `json:"pending_orders"`
	CompletedOrders int     `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
}
