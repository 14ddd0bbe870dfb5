package factory

import (
	"errors"
	"fmt"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/searxng"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/tavily"
)

// ErrNotConfigured 未配置搜索，研究增强只使用调用方提供的文档
var ErrNotConfigured = errors.New("search provider not configured")

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		// 有 tavily key 时默认使用 tavily
		if cfg.Tavily.APIKey == "" {
			return nil, ErrNotConfigured
		}
		provider = "tavily"
	}

	switch provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
