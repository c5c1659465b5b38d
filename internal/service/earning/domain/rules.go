package domain

import "context"

// Fact 是奖励资格规则可见的活动属性集合。
type Fact struct {
	OwnerID    string  `json:"owner_id"`
	Type       string  `json:"type"`
	Kind       string  `json:"kind"`
	DistanceKM float64 `json:"distance_km"`
	Hour       int     `json:"hour"` // 活动发生的小时（0-23），用于限时规则
}

// RuleEngine 评估一条资格规则表达式是否放行该活动。
// 规则由运营配置（如 "type != 'run_completed' || distance_km >= 1.0"），
// 具体的表达式语言由基础设施层的适配器决定。
type RuleEngine interface {
	Evaluate(ctx context.Context, rule string, fact Fact) (bool, error)
}

// GrantCommand 是发往钱包服务的入账命令。
// 字段与钱包侧的契约按 topic 对齐，两个服务各自持有自己的副本。
type GrantCommand struct {
	CommandID string `json:"command_id"`
	OwnerID   string `json:"owner_id"`
	Points    int64  `json:"points"`
	XP        int64  `json:"xp"`
	Cause     string `json:"cause"`
	Reason    string `json:"reason,omitempty"`
}

// GrantCommandProducer 把入账命令投递到钱包 topic。
type GrantCommandProducer interface {
	Produce(ctx context.Context, cmd *GrantCommand) error
}
