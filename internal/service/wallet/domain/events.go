package domain

import "time"

// WalletEventType 是钱包对外发布的领域事件类别。
type WalletEventType string

const (
	EventPointsGranted  WalletEventType = "points_granted"
	EventPointsConsumed WalletEventType = "points_consumed"
	EventCouponRedeemed WalletEventType = "coupon_redeemed"
	EventXPAdded        WalletEventType = "xp_added"
	EventLevelUp        WalletEventType = "level_up"
)

// WalletEvent 在每次提交成功的变更后发布，驱动推送网关等下游。
type WalletEvent struct {
	Type    WalletEventType `json:"type"`
	OwnerID string          `json:"owner_id"`
	Points  int64           `json:"points,omitempty"`
	Cause   Cause           `json:"cause,omitempty"`
	Level   Level           `json:"level,omitempty"`
	At      time.Time       `json:"at"`
}

// GrantCommand 是上游（收益服务）投递到钱包的入账命令。
// CommandID 用于幂等去重，同一命令只会入账一次。
type GrantCommand struct {
	CommandID string `json:"command_id"`
	OwnerID   string `json:"owner_id"`
	Points    int64  `json:"points"`
	XP        int64  `json:"xp"`
	Cause     Cause  `json:"cause"`
	Reason    string `json:"reason,omitempty"`
}
