package application

import (
	"time"

	"corre/internal/service/wallet/domain"
)

// GrantRequest 发放积分的请求体。
type GrantRequest struct {
	OwnerID string `json:"owner_id"`
	Points  int64  `json:"points"`
	Cause   string `json:"cause"`
}

// GrantResponse 发放积分的响应体。
type GrantResponse struct {
	GrantID   string    `json:"grant_id"`
	OwnerID   string    `json:"owner_id"`
	Points    int64     `json:"points"`
	Cause     string    `json:"cause"`
	GrantedAt time.Time `json:"granted_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConsumeRequest 消费积分的请求体。
type ConsumeRequest struct {
	OwnerID string `json:"owner_id"`
	Points  int64  `json:"points"`
}

// ConsumeResponse 消费积分的响应体。
type ConsumeResponse struct {
	Consumed       int64 `json:"consumed"`
	TotalAvailable int64 `json:"total_available"`
}

// RedeemCouponRequest 兑换券码的请求体（固定积分成本的扣减路径）。
type RedeemCouponRequest struct {
	OwnerID    string `json:"owner_id"`
	CouponCode string `json:"coupon_code"`
	PointsCost int64  `json:"points_cost"`
}

// SnapshotResponse 钱包聚合视图。
type SnapshotResponse struct {
	OwnerID          string           `json:"owner_id"`
	TotalAvailable   int64            `json:"total_available"`
	ExpiringSoon     int64            `json:"expiring_soon"`
	BreakdownByCause map[string]int64 `json:"breakdown_by_cause"`
	TakenAt          time.Time        `json:"taken_at"`
}

// GrantView 历史记录中的单条发放。
type GrantView struct {
	GrantID   string    `json:"grant_id"`
	Points    int64     `json:"points"`
	Remaining int64     `json:"remaining"`
	Cause     string    `json:"cause"`
	GrantedAt time.Time `json:"granted_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HistoryResponse 发放历史，按发放时间降序。
type HistoryResponse struct {
	OwnerID string      `json:"owner_id"`
	Grants  []GrantView `json:"grants"`
}

// AddXPRequest 增加经验值的请求体。
type AddXPRequest struct {
	OwnerID string `json:"owner_id"`
	Delta   int64  `json:"delta"`
}

// ProgressResponse 成长等级视图。
type ProgressResponse struct {
	OwnerID         string `json:"owner_id"`
	CurrentXP       int64  `json:"current_xp"`
	Level           string `json:"level"`
	NextLevel       string `json:"next_level,omitempty"`
	XPToNextLevel   int64  `json:"xp_to_next_level"`
	RenewalDiscount int    `json:"renewal_discount_percent"`
}

// DiscountQuoteResponse 积分抵扣额度报价。
type DiscountQuoteResponse struct {
	OwnerID        string `json:"owner_id"`
	MaxPoints      int64  `json:"max_points"`
	TotalAvailable int64  `json:"total_available"`
}

func toSnapshotResponse(ownerID string, snap *domain.WalletSnapshot) *SnapshotResponse {
	breakdown := make(map[string]int64, len(snap.BreakdownByCause))
	for cause, points := range snap.BreakdownByCause {
		breakdown[string(cause)] = points
	}
	return &SnapshotResponse{
		OwnerID:          ownerID,
		TotalAvailable:   snap.TotalAvailable,
		ExpiringSoon:     snap.ExpiringSoon,
		BreakdownByCause: breakdown,
		TakenAt:          snap.TakenAt,
	}
}

func toProgressResponse(ownerID string, p domain.XPProgress) *ProgressResponse {
	return &ProgressResponse{
		OwnerID:         ownerID,
		CurrentXP:       p.CurrentXP,
		Level:           string(p.Level),
		NextLevel:       string(p.NextLevel),
		XPToNextLevel:   p.XPToNextLevel,
		RenewalDiscount: p.RenewalDiscount,
	}
}
