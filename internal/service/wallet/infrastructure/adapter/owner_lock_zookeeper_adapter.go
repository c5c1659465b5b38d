package adapter

import (
	"context"
	"fmt"

	"corre/internal/pkg/logger"
	"corre/internal/service/wallet/domain"
	"corre/internal/zookeeper"
)

// ZookeeperOwnerLocker 是 OwnerLocker 的分布式实现。
// 多个 wallet-service 实例之间，同一 owner 的变更通过 ZooKeeper
// 临时顺序节点排队，保证跨实例的串行化。
type ZookeeperOwnerLocker struct {
	conn *zookeeper.Conn
}

// NewZookeeperOwnerLocker 创建基于 ZooKeeper 的 owner 锁。
func NewZookeeperOwnerLocker(conn *zookeeper.Conn) *ZookeeperOwnerLocker {
	return &ZookeeperOwnerLocker{conn: conn}
}

// WithOwnerLock 在持有分布式锁的状态下执行 fn。
func (l *ZookeeperOwnerLocker) WithOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error {
	lock, err := zookeeper.NewDistributedLock(l.conn, "owner-"+ownerID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOwnerLocked, err)
	}
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOwnerLocked, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("owner_id", ownerID).Msg("failed to release owner lock")
		}
	}()
	return fn(ctx)
}
