package domain

// Tier 是付费会员档位，决定积分抵扣资格，与 XP 等级无关。
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
	TierClub Tier = "club"
)

// tierCapBps 是各档位的抵扣上限，万分比（basis points）。
// 免费档不享受积分抵扣，即使账户里有余额。
var tierCapBps = map[Tier]int64{
	TierFree: 0,
	TierPro:  2000,
	TierClub: 2000,
}

// MaxPointsDiscount 计算一笔购物车最多可用多少积分抵扣。
// cartTotal 以最小货币单位计。未知档位按免费档处理（不抵扣）。
// 结果永不为负，也永不超过可用余额。
func MaxPointsDiscount(cartTotal int64, ownerTier Tier, availablePoints int64) int64 {
	if cartTotal <= 0 || availablePoints <= 0 {
		return 0
	}
	capBps := tierCapBps[ownerTier]
	if capBps <= 0 {
		return 0
	}
	capped := cartTotal * capBps / 10000
	if capped > availablePoints {
		return availablePoints
	}
	return capped
}
