// Package provider 负责低价 LLM 提供商的目录、选择与调用
package provider

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Tier 提供商成本档位
type Tier string

const (
	TierFree    Tier = "free"
	TierPaid    Tier = "paid"
	TierPremium Tier = "premium"
)

// Handle 调用句柄，eino 的 ChatModel 即满足该接口
type Handle interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Descriptor 单个提供商，加载后不再修改
type Descriptor struct {
	Name         string
	Available    bool
	Handle       Handle
	Model        string // 为空时按名称查表
	Priority     int    // 越小越优先
	CostPer1K    float64
	QualityScore float64
	Tier         Tier
	SpeedRating  float64
}

// Catalog 某一档位的全部候选提供商
type Catalog []Descriptor

// Available 返回可用的提供商，保持目录顺序
func (c Catalog) Available() Catalog {
	out := make(Catalog, 0, len(c))
	for _, d := range c {
		if d.Available {
			out = append(out, d)
		}
	}
	return out
}

// Names 返回提供商名称列表
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.Name
	}
	return names
}
