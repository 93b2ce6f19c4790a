package database

import (
	"context"

	"pmo_roadmap_go/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化全局 Redis 客户端，用作查询结果缓存后端。
// 返回是否连接成功：Redis 不可用时调用方退回进程内缓存，而不是直接退出
//（与原始服务 "Redis 优先、失败降级" 的行为一致）。
func InitRedis(addr, password string, db int) bool {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Warnf("Redis not available at %s: %v, falling back to in-memory cache", addr, err)
		RDB = nil
		return false
	}

	log.Info("Redis client connected successfully")
	return true
}
