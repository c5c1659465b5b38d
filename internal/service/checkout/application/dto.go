package application

// QuoteRequest 报价请求。
type QuoteRequest struct {
	OwnerID   string `json:"owner_id"`
	CartTotal int64  `json:"cart_total"` // 最小货币单位
	Tier      string `json:"tier"`
}

// QuoteResponse 报价结果。
type QuoteResponse struct {
	OwnerID        string `json:"owner_id"`
	MaxPoints      int64  `json:"max_points"`
	TotalAvailable int64  `json:"total_available"`
}

// CommitRequest 提交结算：用 PointsToUse 点抵扣后完成订单。
type CommitRequest struct {
	OrderID     string `json:"order_id"`
	OwnerID     string `json:"owner_id"`
	CartTotal   int64  `json:"cart_total"`
	Tier        string `json:"tier"`
	PointsToUse int64  `json:"points_to_use"`
}

// CommitResponse 结算结果。
type CommitResponse struct {
	OrderID    string `json:"order_id"`
	PointsUsed int64  `json:"points_used"`
	CashDue    int64  `json:"cash_due"`
}
