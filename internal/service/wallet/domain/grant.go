package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cause 是一笔积分发放的来源类别，决定这笔积分的有效期。
type Cause string

const (
	CauseRoutineActivity Cause = "routine_activity" // 常规活动打卡
	CauseSpecialActivity Cause = "special_activity" // 专题活动打卡
	CauseRaceCompletion  Cause = "race_completion"  // 完赛奖励
	CausePurchaseRefund  Cause = "purchase_refund"  // 订单退款返还
)

// causeTTL 是各类发放原因对应的积分有效期。
var causeTTL = map[Cause]time.Duration{
	CauseRoutineActivity: 30 * 24 * time.Hour,
	CauseSpecialActivity: 60 * 24 * time.Hour,
	CauseRaceCompletion:  365 * 24 * time.Hour,
	CausePurchaseRefund:  30 * 24 * time.Hour,
}

// Valid 判断是否是约定内的发放原因。
func (c Cause) Valid() bool {
	_, ok := causeTTL[c]
	return ok
}

// TTL 返回该类发放的积分有效期。
func (c Cause) TTL() time.Duration {
	return causeTTL[c]
}

// PointGrant 是一笔带独立过期时钟的积分发放。
// Amount 创建后不可变；Remaining 只能被消费算法递减，永不为负。
// 过期或耗尽的 grant 不删除，保留作为历史记录。
type PointGrant struct {
	ID        string
	OwnerID   string
	Amount    int64
	Remaining int64
	Cause     Cause
	GrantedAt time.Time
	ExpiresAt time.Time
}

// NewPointGrant 创建一笔新的积分发放。
// ExpiresAt 在创建时刻一次性算定为 now + TTL(cause)。
func NewPointGrant(ownerID string, amount int64, cause Cause, now time.Time) (*PointGrant, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !cause.Valid() {
		return nil, ErrUnknownCause
	}
	return &PointGrant{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Amount:    amount,
		Remaining: amount,
		Cause:     cause,
		GrantedAt: now,
		ExpiresAt: now.Add(cause.TTL()),
	}, nil
}

// IsActive 判断这笔发放当前是否还可用：未过期且尚有剩余。
// Remaining 减到 0 的 grant 立即对后续 snapshot/consume 不可见。
func (g *PointGrant) IsActive(now time.Time) bool {
	return g.Remaining > 0 && g.ExpiresAt.After(now)
}

// debit 从这笔发放中扣减 points。调用方（消费计划）保证不会扣穿。
func (g *PointGrant) debit(points int64) {
	if points > g.Remaining {
		points = g.Remaining
	}
	g.Remaining -= points
}
