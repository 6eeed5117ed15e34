package cache

import (
	"sync"
	"time"

	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
)

// ScheduleCache 调度结果缓存接口（对外导出）
// 只服务于只读视图的短窗口复用；结果是计算时刻状态的快照，
// 任务状态变化后的新请求应重新计算而不是命中缓存，因此TTL应设置得很短
type ScheduleCache interface {
	// Set 写入缓存
	// fingerprint: 注册表指纹（任务集合的标识）
	// result: 调度结果
	// ttl: 缓存有效期
	Set(fingerprint string, result *schedule.ScheduleResult, ttl time.Duration)

	// Get 读取缓存
	// 返回: 调度结果和是否命中
	Get(fingerprint string) (*schedule.ScheduleResult, bool)

	// Invalidate 删除指定指纹的缓存（状态变更事件到达时调用）
	Invalidate(fingerprint string)

	// Clear 清空所有缓存
	Clear()
}

// cacheEntry 缓存条目（内部使用）
type cacheEntry struct {
	result     *schedule.ScheduleResult
	expireTime time.Time
}

// MemoryScheduleCache 内存调度结果缓存实现（对外导出）
type MemoryScheduleCache struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

// NewMemoryScheduleCache 创建内存调度结果缓存实例（对外导出）
func NewMemoryScheduleCache() *MemoryScheduleCache {
	c := &MemoryScheduleCache{
		cache: make(map[string]*cacheEntry),
	}
	// 启动清理协程，定期清理过期缓存
	go c.cleanupExpired()
	return c
}

// Set 写入缓存
func (c *MemoryScheduleCache) Set(fingerprint string, result *schedule.ScheduleResult, ttl time.Duration) {
	if fingerprint == "" || result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[fingerprint] = &cacheEntry{
		result:     result,
		expireTime: time.Now().Add(ttl),
	}
}

// Get 读取缓存
func (c *MemoryScheduleCache) Get(fingerprint string) (*schedule.ScheduleResult, bool) {
	if fingerprint == "" {
		return nil, false
	}

	c.mu.RLock()
	entry, exists := c.cache[fingerprint]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().After(entry.expireTime) {
		// 已过期，删除并返回未命中
		c.mu.Lock()
		delete(c.cache, fingerprint)
		c.mu.Unlock()
		return nil, false
	}

	return entry.result, true
}

// Invalidate 删除指定指纹的缓存
func (c *MemoryScheduleCache) Invalidate(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, fingerprint)
}

// Clear 清空所有缓存
func (c *MemoryScheduleCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cacheEntry)
}

// cleanupExpired 清理过期缓存（内部方法）
func (c *MemoryScheduleCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.cache {
			if now.After(entry.expireTime) {
				delete(c.cache, key)
			}
		}
		c.mu.Unlock()
	}
}
