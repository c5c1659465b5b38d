package domain

import "time"

// ExpiringSoonWindow 是 "即将过期" 的前瞻窗口。
const ExpiringSoonWindow = 7 * 24 * time.Hour

// WalletSnapshot 是钱包的只读聚合视图，由 grant 集合即时推导，不落库。
type WalletSnapshot struct {
	TotalAvailable   int64
	ExpiringSoon     int64
	BreakdownByCause map[Cause]int64
	TakenAt          time.Time
}

// BuildSnapshot 对可用 grant 做聚合。
// 不变式: TotalAvailable == sum(BreakdownByCause)。
func BuildSnapshot(grants []*PointGrant, now time.Time) *WalletSnapshot {
	snap := &WalletSnapshot{
		BreakdownByCause: make(map[Cause]int64),
		TakenAt:          now,
	}
	deadline := now.Add(ExpiringSoonWindow)
	for _, g := range ActiveGrants(grants, now) {
		snap.TotalAvailable += g.Remaining
		snap.BreakdownByCause[g.Cause] += g.Remaining
		if !g.ExpiresAt.After(deadline) {
			snap.ExpiringSoon += g.Remaining
		}
	}
	return snap
}
