package provider

import (
	"sync"
	"time"
)

// UsageStats 单个提供商的使用统计
type UsageStats struct {
	Count    int       `json:"count"`
	LastUsed time.Time `json:"last_used"`
	Errors   int       `json:"errors"`
}

// UsageState 进程级的提供商使用状态
type UsageState interface {
	// Next 选出使用次数最少的候选并记一次使用
	Next(candidates Catalog) (Descriptor, error)
	RecordUse(name string)
	RecordError(name string)
	Stats() map[string]UsageStats
}

// UsageTracker 基于互斥锁的 UsageState 实现，选择与计数在同一把锁内完成
type UsageTracker struct {
	mu    sync.Mutex
	stats map[string]*UsageStats
	now   func() time.Time
}

// NewUsageTracker 创建空的统计
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		stats: make(map[string]*UsageStats),
		now:   time.Now,
	}
}

var sharedTracker = NewUsageTracker()

// SharedUsage 返回进程内共享的统计，进程生命周期内不重置
func SharedUsage() *UsageTracker {
	return sharedTracker
}

func (t *UsageTracker) entry(name string) *UsageStats {
	s, ok := t.stats[name]
	if !ok {
		s = &UsageStats{}
		t.stats[name] = s
	}
	return s
}

func (t *UsageTracker) Next(candidates Catalog) (Descriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := leastUsed(candidates, func(name string) int {
		if s, ok := t.stats[name]; ok {
			return s.Count
		}
		return 0
	})
	if !ok {
		return Descriptor{}, ErrNoProviderAvailable
	}
	s := t.entry(d.Name)
	s.Count++
	s.LastUsed = t.now()
	return d, nil
}

func (t *UsageTracker) RecordUse(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.entry(name)
	s.Count++
	s.LastUsed = t.now()
}

func (t *UsageTracker) RecordError(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(name).Errors++
}

// Stats 返回统计快照
func (t *UsageTracker) Stats() map[string]UsageStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]UsageStats, len(t.stats))
	for k, v := range t.stats {
		out[k] = *v
	}
	return out
}
