package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"corre/internal/pkg/redis"
	"corre/internal/service/wallet/domain"
)

// SnapshotRedisCache 是钱包快照的 Redis 读缓存。
// TTL 很短：快照只需要对 "最近一次已提交变更" 最终一致，
// 变更路径上还会主动失效。
type SnapshotRedisCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewSnapshotRedisCache 创建快照缓存。
func NewSnapshotRedisCache(redisClient *redis.Client, ttl time.Duration) *SnapshotRedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SnapshotRedisCache{redisClient: redisClient, ttl: ttl}
}

func snapshotKey(ownerID string) string {
	return fmt.Sprintf("corre:wallet:snapshot:{%s}", ownerID)
}

// Get 读取缓存的快照。未命中返回 (nil, nil)。
func (c *SnapshotRedisCache) Get(ctx context.Context, ownerID string) (*domain.WalletSnapshot, error) {
	data, err := c.redisClient.GetClient().Get(ctx, snapshotKey(ownerID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.WalletSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// 缓存内容损坏按未命中处理，等待重建覆盖
		return nil, nil
	}
	return &snap, nil
}

// Set 写入快照。
func (c *SnapshotRedisCache) Set(ctx context.Context, ownerID string, snap *domain.WalletSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.redisClient.GetClient().Set(ctx, snapshotKey(ownerID), data, c.ttl).Err()
}

// Invalidate 删除快照缓存，变更提交后调用。
func (c *SnapshotRedisCache) Invalidate(ctx context.Context, ownerID string) error {
	return c.redisClient.GetClient().Del(ctx, snapshotKey(ownerID)).Err()
}
