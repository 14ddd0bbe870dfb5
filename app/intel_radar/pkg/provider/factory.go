package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

// BuildCatalog 根据配置构建提供商目录，按 priority 排序
//
// 缺少 api_key 或被禁用的提供商仍保留在目录中，但标记为不可用。
func BuildCatalog(ctx context.Context, providers []config.ProviderConfig) (Catalog, error) {
	catalog := make(Catalog, 0, len(providers))
	for _, p := range providers {
		d := Descriptor{
			Name:         p.Name,
			Available:    !p.Disabled && p.APIKey != "",
			Model:        p.Model,
			Priority:     p.Priority,
			CostPer1K:    p.CostPer1K,
			QualityScore: p.QualityScore,
			Tier:         Tier(p.Tier),
			SpeedRating:  p.SpeedRating,
		}

		if d.Available {
			h, err := NewHandle(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", p.Name, err)
			}
			d.Handle = h
		}
		catalog = append(catalog, d)
		logger.Log.Infof("加载提供商 %s (available=%v, $%.5f/1K tokens)", d.Name, d.Available, d.CostPer1K)
	}

	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].Priority < catalog[j].Priority
	})
	return catalog, nil
}

// NewHandle 按 kind 创建调用句柄
func NewHandle(ctx context.Context, p config.ProviderConfig) (Handle, error) {
	modelName := p.Model
	if modelName == "" {
		modelName = ModelFor(p.Name)
	}
	timeout := time.Duration(p.Timeout) * time.Second

	switch p.Kind {
	case "anthropic":
		return NewAnthropicHandle(AnthropicConfig{
			APIKey:  p.APIKey,
			BaseURL: p.BaseURL,
			Model:   modelName,
			Timeout: timeout,
		}), nil
	case "", "openai":
		return NewOpenAIHandle(ctx, config.LLMConfig{BaseURL: p.BaseURL, APIKey: p.APIKey, Model: modelName}, timeout)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", p.Kind)
	}
}

// NewOpenAIHandle 创建 OpenAI 兼容协议的句柄（groq、together、deepseek 等）
func NewOpenAIHandle(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (Handle, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}
