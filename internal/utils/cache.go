package utils

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache 本地 LRU 缓存，条目带 TTL
type Cache[V any] struct {
	lruCache *lru.Cache[string, CacheItem[V]]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache 创建容量为 size 的缓存，size <= 0 时使用 500
func NewCache[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = 500
	}
	l, err := lru.New[string, CacheItem[V]](size)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	return &Cache[V]{lruCache: l, ttl: ttl, now: time.Now}
}

// Set 写入缓存
func (c *Cache[V]) Set(key string, data V) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
	})
}

// Get 获取缓存，不存在或已过期时 ok 为 false
func (c *Cache[V]) Get(key string) (data V, ok bool) {
	val, found := c.lruCache.Get(key)
	if !found {
		return data, false
	}

	// 检查过期
	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return data, false
	}

	return val.Data, true
}

// Delete 删除指定缓存
func (c *Cache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}

func (c *Cache[V]) Len() int {
	return c.lruCache.Len()
}
