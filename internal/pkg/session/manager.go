// internal/pkg/session/manager.go
package session

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	gatewayKeyPrefix = "corre:gateway:session:"
	sessionTTL       = 24 * time.Hour
)

// Manager 维护 "用户 -> 推送网关节点" 的会话映射。
// 推送网关在 WebSocket 建连时写入，消息路由方查询后把消息投递到正确的节点。
type Manager struct {
	rdb *goredis.Client
}

// NewManager 创建一个会话管理器。
func NewManager(redisAddr string) *Manager {
	return &Manager{
		rdb: goredis.NewClient(&goredis.Options{Addr: redisAddr}),
	}
}

// SetUserGateway 记录用户当前连接的网关节点。
func (m *Manager) SetUserGateway(ctx context.Context, userID, nodeID string) error {
	return m.rdb.Set(ctx, gatewayKeyPrefix+userID, nodeID, sessionTTL).Err()
}

// GetUserGateway 查询用户所在的网关节点。用户不在线时返回空串。
func (m *Manager) GetUserGateway(ctx context.Context, userID string) (string, error) {
	nodeID, err := m.rdb.Get(ctx, gatewayKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query gateway session: %w", err)
	}
	return nodeID, nil
}

// RemoveUserGateway 在连接断开时清理会话。
func (m *Manager) RemoveUserGateway(ctx context.Context, userID string) error {
	return m.rdb.Del(ctx, gatewayKeyPrefix+userID).Err()
}
