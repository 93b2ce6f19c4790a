// Package cache 提供查询结果缓存。接口化的 Store 注入到服务层，
// 生产环境优先 Redis，Redis 不可用时降级为进程内 TTL 缓存；
// 测试注入固定时钟的内存实现以保证确定性。
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// keyPrefix 所有缓存键的统一前缀，按模式清理时也以它为界。
const keyPrefix = "pmo_query_"

// Key 由若干标识片段派生缓存键：前缀 + 片段拼接串的 md5。
// 片段里可能包含查询参数等任意字符，md5 后键长度稳定且安全。
func Key(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "_")))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Stats 是缓存运行统计，/api/cache/stats 直接输出。
type Stats struct {
	Backend string `json:"backend"`
	Keys    int    `json:"keys"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
}

// Store 是服务层依赖的缓存接口。
type Store interface {
	// Get 返回键对应的值；不存在或已过期时 ok=false。
	Get(ctx context.Context, key string) (val []byte, ok bool)
	// Set 写入值并设置 TTL。
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// ClearPattern 删除键中包含 pattern 子串的条目，pattern 为空时清空全部。
	// 返回删除的条目数。
	ClearPattern(ctx context.Context, pattern string) int
	// Stats 返回运行统计。
	Stats(ctx context.Context) Stats
}

type memoryEntry struct {
	val       []byte
	expiresAt time.Time
}

// memoryStore 进程内 TTL 缓存。时钟可注入，过期条目读取时惰性剔除。
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
	hits    int64
	misses  int64
}

// NewMemoryStore 创建进程内缓存，now 为 nil 时使用系统时钟。
func NewMemoryStore(now func() time.Time) Store {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		if ok {
			delete(s.entries, key)
		}
		s.misses++
		return nil, false
	}
	s.hits++
	return entry.val, true
}

func (s *memoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{val: val, expiresAt: s.now().Add(ttl)}
}

func (s *memoryStore) ClearPattern(_ context.Context, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if pattern == "" || strings.Contains(key, pattern) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *memoryStore) Stats(_ context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Backend: "memory",
		Keys:    len(s.entries),
		Hits:    s.hits,
		Misses:  s.misses,
	}
}
