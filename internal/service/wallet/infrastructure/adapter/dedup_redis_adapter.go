package adapter

import (
	"context"
	"fmt"

	"corre/internal/pkg/redis"
)

const markProcessedScriptName = "wallet_mark_processed"

// DedupRedisAdapter 是 CommandDeduplicator 的 Redis 实现。
// 每条命令 ID 在 Redis 里留一个带 TTL 的标记，标记期内的重复命令被拒绝。
type DedupRedisAdapter struct {
	redisClient *redis.Client
	ttlSeconds  int64
}

// NewDedupRedisAdapter 创建去重适配器并加载 Lua 脚本。
func NewDedupRedisAdapter(redisClient *redis.Client, ttlSeconds int64) (*DedupRedisAdapter, error) {
	if err := redisClient.LoadScriptFromContent(markProcessedScriptName, markProcessedScript); err != nil {
		return nil, fmt.Errorf("failed to load dedup script: %w", err)
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 7 * 24 * 3600
	}
	return &DedupRedisAdapter{redisClient: redisClient, ttlSeconds: ttlSeconds}, nil
}

// MarkProcessed 原子地标记命令已处理。首次标记返回 true，重复返回 false。
func (a *DedupRedisAdapter) MarkProcessed(ctx context.Context, commandID string) (bool, error) {
	key := fmt.Sprintf("corre:wallet:cmd:{%s}", commandID)
	result, err := a.redisClient.RunScript(ctx, markProcessedScriptName, []string{key}, a.ttlSeconds)
	if err != nil {
		return false, fmt.Errorf("dedup adapter failed to run script: %w", err)
	}
	code, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from Lua script: %T", result)
	}
	return code == 1, nil
}

var markProcessedScript = `
-- KEYS[1]: 命令标记的 Key, 例如: corre:wallet:cmd:{uuid}
-- ARGV[1]: 标记的 TTL（秒）

-- 已存在说明该命令处理过，拒绝重复入账
if redis.call('exists', KEYS[1]) == 1 then
    return 0
end

redis.call('set', KEYS[1], 1, 'EX', tonumber(ARGV[1]))
return 1
`
