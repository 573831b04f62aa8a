package redisstate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// presenceTTL 是在线标记的存活时间。标记在注册时写入、注销时删除；
// 进程异常退出时靠 TTL 过期，不会永久残留。
const presenceTTL = 5 * time.Minute

// RedisPresenceRepository 是 PresenceRepository 接口的 Redis 实现
type RedisPresenceRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPresenceRepository 创建 RedisPresenceRepository 实例
func NewRedisPresenceRepository(client *redis.Client, keyPrefix string) *RedisPresenceRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisPresenceRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "pm:" // pairmap
	}
	return &RedisPresenceRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisPresenceRepository) presenceKey(coupleID, userID string) string {
	return fmt.Sprintf("%spresence:%s:%s", r.keyPrefix, coupleID, userID)
}

// SetOnline 写入带 TTL 的在线标记。
func (r *RedisPresenceRepository) SetOnline(ctx context.Context, coupleID, userID string) error {
	key := r.presenceKey(coupleID, userID)
	if err := r.client.Set(ctx, key, "1", presenceTTL).Err(); err != nil {
		return fmt.Errorf("redis: set online flag %s: %w", key, err)
	}
	return nil
}

// SetOffline 删除在线标记。
func (r *RedisPresenceRepository) SetOffline(ctx context.Context, coupleID, userID string) error {
	key := r.presenceKey(coupleID, userID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: delete online flag %s: %w", key, err)
	}
	return nil
}

// PartnerOnline 扫描配对的在线标记，判断除 selfID 外是否还有人在线。
// 一个配对至多两个成员，SCAN 的结果集很小。
func (r *RedisPresenceRepository) PartnerOnline(ctx context.Context, coupleID, selfID string) (bool, error) {
	pattern := fmt.Sprintf("%spresence:%s:*", r.keyPrefix, coupleID)
	selfKey := r.presenceKey(coupleID, selfID)

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 16).Result()
		if err != nil {
			return false, fmt.Errorf("redis: scan presence keys for couple %s: %w", coupleID, err)
		}
		for _, key := range keys {
			if key != selfKey && strings.HasPrefix(key, r.keyPrefix) {
				return true, nil
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	logrus.WithField("couple_id", coupleID).Debug("No partner presence flag found")
	return false, nil
}
