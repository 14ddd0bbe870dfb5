package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/extract"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/research"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/scraper"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search/factory"
)

// expensiveTimeout OpenAI 昂贵档位单次请求超时
const expensiveTimeout = 120 * time.Second

// NewFromConfig 根据配置构建提供商目录、限流调用方、抓取器与研究系统
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Engine, error) {
	// 初始化低价档位
	catalog, err := provider.BuildCatalog(ctx, cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("提供商初始化失败: %w", err)
	}

	// 初始化昂贵档位
	expensive := ExpensiveProviders{
		Claude:      cfg.Expensive.ClaudeAPIKey != "",
		Cohere:      cfg.Expensive.CohereAPIKey != "",
		OpenAIModel: cfg.Expensive.OpenAI.Model,
	}
	if cfg.Expensive.OpenAI.APIKey != "" {
		h, err := provider.NewOpenAIHandle(ctx, cfg.Expensive.OpenAI, expensiveTimeout)
		if err != nil {
			return nil, fmt.Errorf("OpenAI 初始化失败: %w", err)
		}
		expensive.OpenAI = h
	}

	opts := Options{
		Catalog:       catalog,
		LoadBalancing: cfg.LoadBalancing,
		Caller:        provider.NewThrottledCaller(cfg.Concurrency.RPM, cfg.Concurrency.QPS),
		Expensive:     expensive,
		Fetcher:       scraper.New(time.Duration(cfg.Scraper.Timeout)*time.Second, cfg.Scraper.UserAgent),
		Extractor:     extract.BasicExtractor{},
		ResearchTopK:  cfg.Research.TopK,
	}

	// 初始化研究系统与搜索客户端，搜索未配置时只使用用户文档
	if cfg.Research.Enabled {
		opts.Research = research.NewRAGFactory(cfg.Research.ChunkSize)
		searcher, err := factory.NewSearcher(cfg.Search)
		switch {
		case errors.Is(err, factory.ErrNotConfigured):
			logger.Log.Info("未配置搜索，研究增强只使用提供的文档")
		case err != nil:
			return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
		default:
			opts.Searcher = searcher
		}
	}

	return New(opts), nil
}
