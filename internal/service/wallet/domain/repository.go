package domain

import "context"

// GrantRepository 是积分账本的持久化端口。
// grant 只增不删；唯一允许的修改是按消费计划递减 Remaining。
type GrantRepository interface {
	// Append 追加一笔新发放。
	Append(ctx context.Context, grant *PointGrant) error
	// FindByOwner 返回某个 owner 的全部 grant（含已过期/已耗尽）。
	// owner 不存在视为空集合，不是错误。
	FindByOwner(ctx context.Context, ownerID string) ([]*PointGrant, error)
	// History 按 GrantedAt 降序返回最多 limit 条发放记录，仅用于展示。
	History(ctx context.Context, ownerID string, limit int) ([]*PointGrant, error)
	// ApplyDebits 原子地提交一批扣减。并发读不得观察到半提交状态。
	ApplyDebits(ctx context.Context, ownerID string, debits []Debit) error
}

// XPRepository 是经验值计数器的持久化端口。计数器只增不减。
type XPRepository interface {
	// AddXP 给 owner 增加 delta 经验并返回新值。
	AddXP(ctx context.Context, ownerID string, delta int64) (int64, error)
	// CurrentXP 返回当前经验值。owner 不存在时为 0。
	CurrentXP(ctx context.Context, ownerID string) (int64, error)
}

// OwnerLocker 提供 owner 级别的互斥：同一钱包的变更串行执行，
// 不同钱包之间完全独立。
type OwnerLocker interface {
	WithOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error
}

// EventPublisher 把已提交的钱包事件发布给下游。
type EventPublisher interface {
	Publish(ctx context.Context, event *WalletEvent) error
}

// CommandDeduplicator 判定一条入账命令是否已经处理过。
type CommandDeduplicator interface {
	// MarkProcessed 原子地标记命令已处理；已存在时返回 false。
	MarkProcessed(ctx context.Context, commandID string) (bool, error)
}
