package cache

import (
	"context"
	"sync/atomic"
	"time"

	"pmo_roadmap_go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// redisStore 基于 Redis 的缓存实现。Redis 出错时按未命中处理，
// 缓存故障从不影响请求本身。
type redisStore struct {
	client *redis.Client
	hits   int64
	misses int64
}

// NewRedisStore 用已连接的 Redis 客户端创建缓存。
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnf("redis cache get error: %v", err)
		}
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&s.hits, 1)
	return val, true
}

func (s *redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := s.client.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Warnf("redis cache set error: %v", err)
	}
}

func (s *redisStore) ClearPattern(ctx context.Context, pattern string) int {
	match := keyPrefix + "*"
	if pattern != "" {
		match = "*" + pattern + "*"
	}

	keys, err := s.client.Keys(ctx, match).Result()
	if err != nil {
		log.Warnf("redis cache keys error: %v", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Warnf("redis cache delete error: %v", err)
		return 0
	}
	return len(keys)
}

func (s *redisStore) Stats(ctx context.Context) Stats {
	keys, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		log.Warnf("redis cache stats error: %v", err)
	}
	return Stats{
		Backend: "redis",
		Keys:    len(keys),
		Hits:    atomic.LoadInt64(&s.hits),
		Misses:  atomic.LoadInt64(&s.misses),
	}
}
