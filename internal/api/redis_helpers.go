package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRateCounter 是限流计数需要的最小 Redis 能力面，测试可用假实现替换。
type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// dailyQuotaKey 生成按 UTC 自然日滚动的配额 key，例如 export_rate:42:2026-08-31。
func dailyQuotaKey(name string, userID uint) string {
	return fmt.Sprintf("%s:%d:%s", name, userID, time.Now().UTC().Format("2006-01-02"))
}

// incrWithTTL 自增计数器，首次写入时设置过期时间。
// Expire 失败不影响计数结果，配额 key 会随日期切换自然失效。
func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
