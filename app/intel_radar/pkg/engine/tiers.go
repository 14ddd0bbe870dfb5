package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/normalize"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/prompt"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
)

// 昂贵档位参数
const (
	OpenAICostPer1K   = 0.030
	GroqCostPer1K     = 0.0002
	ExpensiveMaxToken = 2000
	tokensPerWord     = 1.3
)

var (
	errNotImplemented     = errors.New("analysis not implemented")
	errNoExpensiveClients = errors.New("no expensive provider configured")
	errRateLimited        = errors.New("rate limit retries exhausted")
)

// Request 一次档位尝试的输入
type Request struct {
	URL         string
	Content     *model.StructuredContent
	ProductName string
}

// Tier 分析档位
type Tier interface {
	Name() string
	Attempt(ctx context.Context, req *Request) (*model.IntelligenceRecord, error)
}

// finish 写入元数据与诊断块，计算置信度并做最终替换
func finish(rec *model.IntelligenceRecord, req *Request, method, diagKey string, diag model.Diagnostics, now time.Time) *model.IntelligenceRecord {
	rec.SourceURL = req.URL
	rec.PageTitle = req.Content.Title
	rec.ProductName = req.ProductName
	rec.AnalysisTimestamp = now.UTC()
	rec.RawContent = model.Truncate(req.Content.Content, 1000)
	rec.AnalysisMethod = method
	rec.DiagnosticsKey = diagKey
	rec.Diagnostics = diag

	rec = normalize.SanitizeRecord(rec, req.ProductName)
	rec.ConfidenceScore = normalize.Score(rec, req.Content)
	metrics.AnalysisTier.WithLabelValues(method).Inc()
	return rec
}

func estimateTokens(text string) float64 {
	return float64(len(strings.Fields(text))) * tokensPerWord
}

// loadBalancedTier 档位一：轮询选择低价提供商
type loadBalancedTier struct {
	catalog  provider.Catalog
	selector *provider.Selector
	invoker  *provider.Invoker
	usage    provider.UsageState
	now      func() time.Time
}

func (t *loadBalancedTier) Name() string { return model.MethodLoadBalanced }

func (t *loadBalancedTier) Attempt(ctx context.Context, req *Request) (*model.IntelligenceRecord, error) {
	d, err := t.selector.Select(t.catalog)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("负载均衡选择: %s ($%.5f/1K tokens)", d.Name, d.CostPer1K)

	p := prompt.Build(req.Content, req.URL, req.ProductName)
	raw := t.invoker.Invoke(ctx, d, p, provider.DefaultMaxTokens, provider.DefaultTemperature)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := normalize.Normalize(raw, req.Content, req.ProductName)
	return finish(rec, req, model.MethodLoadBalanced, "load_balanced_analysis", model.Diagnostics{
		"provider_selected":         d.Name,
		"cost_per_1k_tokens":        d.CostPer1K,
		"load_balancing_enabled":    true,
		"load_balancing_stats":      t.usage.Stats(),
		"provider_selection_method": t.selector.Policy().String(),
	}, t.now()), nil
}

// fixedPriorityTier 档位二：总是使用优先级最高的低价提供商
type fixedPriorityTier struct {
	catalog  provider.Catalog
	selector *provider.Selector
	invoker  *provider.Invoker
	now      func() time.Time
}

func (t *fixedPriorityTier) Name() string { return model.MethodUltraCheap }

func (t *fixedPriorityTier) Attempt(ctx context.Context, req *Request) (*model.IntelligenceRecord, error) {
	d, err := t.selector.Select(t.catalog)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("使用低价提供商: %s ($%.5f/1K tokens)", d.Name, d.CostPer1K)

	start := t.now()
	p := prompt.Build(req.Content, req.URL, req.ProductName)
	raw := t.invoker.Invoke(ctx, d, p, provider.DefaultMaxTokens, provider.DefaultTemperature)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elapsed := t.now().Sub(start)

	// 按提示词长度估算成本，与 OpenAI 同等请求对比
	tokens := estimateTokens(p)
	cost := tokens / 1000 * d.CostPer1K
	openaiCost := tokens / 1000 * OpenAICostPer1K
	savings := openaiCost - cost
	pct := 0.0
	if openaiCost > 0 {
		pct = savings / openaiCost * 100
	}
	logger.Log.Infof("成本: $%.5f (比 OpenAI 节省 $%.5f)", cost, savings)

	rec := normalize.Normalize(raw, req.Content, req.ProductName)
	return finish(rec, req, model.MethodUltraCheap, "ultra_cheap_analysis", model.Diagnostics{
		"provider_used":          d.Name,
		"cost_per_request":       cost,
		"cost_savings_vs_openai": savings,
		"savings_percentage":     pct,
		"quality_score":          d.QualityScore,
		"processing_time":        elapsed.Seconds(),
		"load_balancing_enabled": false,
	}, t.now()), nil
}

// expensiveTier 档位三：只在没有低价目录时使用
type expensiveTier struct {
	providers ExpensiveProviders
	caller    provider.Caller
	now       func() time.Time
}

func (t *expensiveTier) Name() string { return model.MethodExpensiveOpenAI }

func (t *expensiveTier) Attempt(ctx context.Context, req *Request) (*model.IntelligenceRecord, error) {
	// Claude 与 Cohere 尚未接入，配置了 key 时直接交给模式匹配档位
	if t.providers.Claude {
		logger.Log.Info("Claude 分析尚未实现，使用模式匹配")
		return nil, fmt.Errorf("claude: %w", errNotImplemented)
	}
	if t.providers.Cohere {
		logger.Log.Info("Cohere 分析尚未实现，使用模式匹配")
		return nil, fmt.Errorf("cohere: %w", errNotImplemented)
	}
	if t.providers.OpenAI == nil {
		return nil, errNoExpensiveClients
	}
	return t.openai(ctx, req)
}

func (t *expensiveTier) openai(ctx context.Context, req *Request) (*model.IntelligenceRecord, error) {
	p := prompt.Build(req.Content, req.URL, req.ProductName)
	cost := estimateTokens(p) / 1000 * OpenAICostPer1K
	logger.Log.Warnf("昂贵的 OpenAI 调用: ~$%.4f", cost)

	modelID := t.providers.OpenAIModel
	if modelID == "" {
		modelID = "gpt-4"
	}
	msgs := []*schema.Message{
		schema.SystemMessage(prompt.ExpensiveSystemMessage(req.ProductName)),
		schema.UserMessage(p),
	}
	reply, err := t.caller.Call(ctx, t.providers.OpenAI, modelID, msgs, provider.DefaultTemperature, ExpensiveMaxToken)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	var raw string
	switch r := reply.(type) {
	case provider.TextReply:
		raw = string(r)
	case provider.PayloadReply:
		if fallback, _ := r["fallback"].(bool); fallback {
			return nil, fmt.Errorf("openai: %w", errRateLimited)
		}
		data, err := json.Marshal(map[string]any(r))
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		raw = string(data)
	default:
		return nil, fmt.Errorf("openai: unexpected reply %T", reply)
	}

	rec := normalize.Normalize(raw, req.Content, req.ProductName)
	return finish(rec, req, model.MethodExpensiveOpenAI, "expensive_analysis_warning", model.Diagnostics{
		"provider_used":          "openai_gpt4",
		"estimated_cost":         cost,
		"cost_vs_ultra_cheap":    fmt.Sprintf("%.0fx more expensive than Groq", cost/GroqCostPer1K),
		"recommendation":         "Switch to ultra-cheap providers for 95%+ savings",
		"load_balancing_enabled": false,
	}, t.now()), nil
}
