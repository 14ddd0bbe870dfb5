package provider

import (
	"errors"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
)

// ErrNoProviderAvailable 目录为空或全部不可用，调用方应降级到下一档
var ErrNoProviderAvailable = errors.New("no provider available")

// Policy 选择策略
type Policy int

const (
	// RoundRobin 轮询：使用次数最少者优先
	RoundRobin Policy = iota
	// FixedPriority 固定优先级：总是 priority 最小者，不修改统计
	FixedPriority
)

func (p Policy) String() string {
	if p == FixedPriority {
		return "fixed_priority"
	}
	return "round_robin_load_balancing"
}

// Selector 从目录中挑选一个提供商
type Selector struct {
	policy Policy
	state  UsageState
}

// NewSelector state 为空时使用进程共享统计
func NewSelector(policy Policy, state UsageState) *Selector {
	if state == nil {
		state = SharedUsage()
	}
	return &Selector{policy: policy, state: state}
}

// Policy 返回选择策略
func (s *Selector) Policy() Policy {
	return s.policy
}

// Select 按策略选择
func (s *Selector) Select(catalog Catalog) (Descriptor, error) {
	candidates := catalog.Available()
	if len(candidates) == 0 {
		return Descriptor{}, ErrNoProviderAvailable
	}

	var (
		d   Descriptor
		err error
	)
	if s.policy == FixedPriority {
		d, _ = leastUsed(candidates, func(string) int { return 0 })
	} else {
		d, err = s.state.Next(candidates)
		if err != nil {
			return Descriptor{}, err
		}
	}

	metrics.ProviderSelections.WithLabelValues(d.Name).Inc()
	return d, nil
}

// leastUsed 次数最少者胜出，次数相同比较 priority，再相同按目录顺序
func leastUsed(candidates Catalog, count func(name string) int) (Descriptor, bool) {
	best := -1
	bestCount := 0
	for i, d := range candidates {
		c := count(d.Name)
		if best < 0 || c < bestCount || c == bestCount && d.Priority < candidates[best].Priority {
			best, bestCount = i, c
		}
	}
	if best < 0 {
		return Descriptor{}, false
	}
	return candidates[best], true
}
