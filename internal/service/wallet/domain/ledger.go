package domain

import (
	"sort"
	"time"
)

// Debit 是消费计划中对单笔 grant 的扣减。
type Debit struct {
	GrantID string
	Points  int64
}

// ActiveGrants 过滤出当前可用的 grant：Remaining > 0 且未过期。
func ActiveGrants(grants []*PointGrant, now time.Time) []*PointGrant {
	active := make([]*PointGrant, 0, len(grants))
	for _, g := range grants {
		if g.IsActive(now) {
			active = append(active, g)
		}
	}
	return active
}

// TotalAvailable 计算当前可用总余额。
func TotalAvailable(grants []*PointGrant, now time.Time) int64 {
	var total int64
	for _, g := range ActiveGrants(grants, now) {
		total += g.Remaining
	}
	return total
}

// sortForConsumption 把可用 grant 按消费顺序排序：
// 最先过期的在前；过期时刻相同的按发放时间，再按 ID 保证完全确定。
// 这个顺序是对外承诺的契约，不是实现细节——先花最接近作废的积分，
// 用户的终身可用价值才是最大的。
func sortForConsumption(grants []*PointGrant) {
	sort.Slice(grants, func(i, j int) bool {
		a, b := grants[i], grants[j]
		if !a.ExpiresAt.Equal(b.ExpiresAt) {
			return a.ExpiresAt.Before(b.ExpiresAt)
		}
		if !a.GrantedAt.Equal(b.GrantedAt) {
			return a.GrantedAt.Before(b.GrantedAt)
		}
		return a.ID < b.ID
	})
}

// PlanConsumption 计算消费 points 点所需的逐笔扣减计划。
// 纯函数，不修改任何 grant。余额不足时返回 ErrInsufficientPoints，
// 此时不产生任何计划（全有或全无）。请求 0 点是合法的空操作。
func PlanConsumption(grants []*PointGrant, points int64, now time.Time) ([]Debit, error) {
	if points < 0 {
		return nil, ErrInvalidAmount
	}
	if points == 0 {
		return nil, nil
	}

	active := ActiveGrants(grants, now)
	sortForConsumption(active)

	var available int64
	for _, g := range active {
		available += g.Remaining
	}
	if available < points {
		return nil, ErrInsufficientPoints
	}

	plan := make([]Debit, 0, len(active))
	needed := points
	for _, g := range active {
		if needed == 0 {
			break
		}
		take := g.Remaining
		if take > needed {
			take = needed
		}
		plan = append(plan, Debit{GrantID: g.ID, Points: take})
		needed -= take
	}
	return plan, nil
}

// ApplyPlan 把消费计划施加到 grant 集合上。
// 计划由 PlanConsumption 产出，二者之间 grant 集合不得被并发修改
// （由 owner 级互斥锁保证）。
func ApplyPlan(grants []*PointGrant, plan []Debit) {
	byID := make(map[string]*PointGrant, len(grants))
	for _, g := range grants {
		byID[g.ID] = g
	}
	for _, d := range plan {
		if g, ok := byID[d.GrantID]; ok {
			g.debit(d.Points)
		}
	}
}
