package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/extract"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/research"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/scraper"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

// ErrTotalAnalysisFailure 顶层兜底错误，包括被恢复的 panic
var ErrTotalAnalysisFailure = errors.New("total analysis failure")

// Options 引擎依赖，未设置的字段使用默认实现或视为不可用
type Options struct {
	// Catalog 低价档位提供商，为空时使用昂贵档位
	Catalog       provider.Catalog
	LoadBalancing bool
	Usage         provider.UsageState
	Caller        provider.Caller

	Expensive ExpensiveProviders

	Fetcher   scraper.Fetcher
	Extractor extract.ProductExtractor

	// Research 每个请求调用一次，返回的 System 随请求结束丢弃
	Research     research.Factory
	Searcher     search.Searcher
	ResearchTopK int
}

// ExpensiveProviders 昂贵档位，按 Claude、Cohere、OpenAI 顺序尝试
type ExpensiveProviders struct {
	Claude      bool // 已配置 key，分析尚未实现
	Cohere      bool // 同上
	OpenAI      provider.Handle
	OpenAIModel string
}

// Capabilities 构造时确定的能力开关，之后不再变化
type Capabilities struct {
	LoadBalanced     bool
	CheapTier        bool
	ExpensiveTier    bool
	Research         bool
	WebSearch        bool
	ProductExtractor bool
}

// Engine 销售页竞争情报分析引擎
type Engine struct {
	caps      Capabilities
	catalog   provider.Catalog
	usage     provider.UsageState
	fetcher   scraper.Fetcher
	extractor extract.ProductExtractor
	research  research.Factory
	searcher  search.Searcher
	topK      int

	primary  Tier
	fallback *patternTier
	now      func() time.Time
}

// New 创建引擎实例
func New(opts Options) *Engine {
	if opts.Usage == nil {
		opts.Usage = provider.SharedUsage()
	}
	if opts.Caller == nil {
		opts.Caller = provider.NewThrottledCaller(60, 1)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = scraper.New(scraper.DefaultTimeout, scraper.DefaultUserAgent)
	}
	if opts.ResearchTopK <= 0 {
		opts.ResearchTopK = research.DefaultTopK
	}

	e := &Engine{
		caps:      detect(opts),
		catalog:   opts.Catalog,
		usage:     opts.Usage,
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		research:  opts.Research,
		searcher:  opts.Searcher,
		topK:      opts.ResearchTopK,
		now:       time.Now,
	}
	e.fallback = &patternTier{now: e.now}
	e.primary = e.selectTier(opts)

	logger.Log.Infof("分析引擎就绪: tier=%s providers=%v research=%v", e.primary.Name(), opts.Catalog.Names(), e.caps.Research)
	return e
}

func detect(opts Options) Capabilities {
	// 全部标记为不可用的目录不算低价档位
	cheap := len(opts.Catalog.Available()) > 0
	return Capabilities{
		LoadBalanced:     cheap && opts.LoadBalancing,
		CheapTier:        cheap,
		ExpensiveTier:    opts.Expensive.Claude || opts.Expensive.Cohere || opts.Expensive.OpenAI != nil,
		Research:         opts.Research != nil,
		WebSearch:        opts.Searcher != nil,
		ProductExtractor: opts.Extractor != nil,
	}
}

// selectTier 只在构造时执行一次
func (e *Engine) selectTier(opts Options) Tier {
	invoker := provider.NewInvoker(opts.Caller, opts.Usage)
	switch {
	case e.caps.LoadBalanced:
		return &loadBalancedTier{
			catalog:  opts.Catalog,
			selector: provider.NewSelector(provider.RoundRobin, opts.Usage),
			invoker:  invoker,
			usage:    opts.Usage,
			now:      e.now,
		}
	case e.caps.CheapTier:
		return &fixedPriorityTier{
			catalog:  opts.Catalog,
			selector: provider.NewSelector(provider.FixedPriority, opts.Usage),
			invoker:  invoker,
			now:      e.now,
		}
	default:
		logger.Log.Warn("没有低价提供商，使用昂贵档位")
		return &expensiveTier{providers: opts.Expensive, caller: opts.Caller, now: e.now}
	}
}

// Capabilities 返回能力开关
func (e *Engine) Capabilities() Capabilities {
	return e.caps
}

// Usage 返回负载均衡统计来源
func (e *Engine) Usage() provider.UsageState {
	return e.usage
}

// Analyze 完整分析流程，从不返回错误；彻底失败时返回置信度为 0 的错误记录
func (e *Engine) Analyze(ctx context.Context, pageURL string) *model.IntelligenceRecord {
	rec, _ := e.analyze(ctx, pageURL)
	return rec
}

// analyze 额外返回结构化内容供研究增强重新打分，失败时为 nil
func (e *Engine) analyze(ctx context.Context, pageURL string) (rec *model.IntelligenceRecord, content *model.StructuredContent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("分析过程 panic [%s]: %v", pageURL, r)
			rec, content = e.errorRecord(pageURL, fmt.Errorf("%w: panic: %v", ErrTotalAnalysisFailure, r)), nil
		}
	}()

	logger.Log.Infof("开始分析: %s", pageURL)

	// 1. 抓取页面
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		logger.Log.Errorf("页面分析失败 [%s]: %v", pageURL, err)
		return e.errorRecord(pageURL, err), nil
	}

	// 2. 提取结构
	content = extract.Structure(page)
	content.URL = pageURL

	// 3. 产品名
	name := e.productName(page, content)
	logger.Log.Infof("识别到产品名: %q", name)

	// 4. 分档提取情报
	req := &Request{URL: pageURL, Content: content, ProductName: name}
	return e.run(ctx, req), content
}

func (e *Engine) run(ctx context.Context, req *Request) *model.IntelligenceRecord {
	rec, err := attempt(ctx, e.primary, req)
	if err == nil {
		return rec
	}
	logger.Log.Warnf("%s 档位失败，改用模式匹配: %v", e.primary.Name(), err)
	rec, _ = e.fallback.Attempt(ctx, req)
	return rec
}

// attempt 把档位内的 panic 转为错误，以便落入模式匹配档位
func attempt(ctx context.Context, t Tier, req *Request) (rec *model.IntelligenceRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("tier %s panic: %v", t.Name(), r)
		}
	}()
	return t.Attempt(ctx, req)
}

// productName 依次尝试注入的提取器、内置提取器、URL 域名
func (e *Engine) productName(page *model.PageContent, content *model.StructuredContent) string {
	if e.extractor != nil {
		if n := e.extractor.Extract(content.Content, page.Title); n != "" && n != extract.GenericProductName {
			return n
		}
	}
	if n := (extract.BasicExtractor{}).Extract(content.Content, page.Title); n != "" && n != extract.GenericProductName {
		return n
	}
	if n := extract.FromURL(content.URL); n != "" {
		return n
	}
	return extract.GenericProductName
}
