package engine

import "github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"

// 健康状态
const (
	StatusFullyOperational = "fully_operational"
	StatusPartial          = "partial_functionality"
)

// HealthReport 能力报告
type HealthReport struct {
	Status                   string   `json:"status"`
	ActiveTier               string   `json:"active_tier"`
	LoadBalancingAvailable   bool     `json:"load_balancing_available"`
	UltraCheapProviders      bool     `json:"ultra_cheap_ai_providers"`
	ExpensiveProviders       bool     `json:"expensive_providers"`
	PatternFallback          bool     `json:"pattern_fallback"`
	ResearchEnhancedAnalysis bool     `json:"research_enhanced_analysis"`
	WebResearch              bool     `json:"web_research"`
	ProductExtractor         bool     `json:"advanced_product_extraction"`
	Providers                []string `json:"providers"`
	AvailableProviders       []string `json:"available_providers"`
}

// Health 汇总构造时确定的能力
func (e *Engine) Health() HealthReport {
	available := e.catalog.Available()
	status := StatusPartial
	if len(available) > 0 {
		status = StatusFullyOperational
	}
	return HealthReport{
		Status:                   status,
		ActiveTier:               e.primary.Name(),
		LoadBalancingAvailable:   e.caps.LoadBalanced,
		UltraCheapProviders:      e.caps.CheapTier,
		ExpensiveProviders:       e.caps.ExpensiveTier,
		PatternFallback:          true,
		ResearchEnhancedAnalysis: e.caps.Research,
		WebResearch:              e.caps.WebSearch,
		ProductExtractor:         e.caps.ProductExtractor,
		Providers:                e.catalog.Names(),
		AvailableProviders:       available.Names(),
	}
}

// LoadBalancingStats 提供商使用统计
func (e *Engine) LoadBalancingStats() map[string]provider.UsageStats {
	return e.usage.Stats()
}


// RAGAvailability 研究增强能力
type RAGAvailability struct {
	RAGAvailable      bool            `json:"rag_available"`
	EnhancedAnalyzers bool            `json:"enhanced_analyzers"`
	Capabilities      map[string]bool `json:"capabilities"`
}

// RAGAvailability 汇总研究系统是否可用
func (e *Engine) RAGAvailability() RAGAvailability {
	on := e.caps.Research
	return RAGAvailability{
		RAGAvailable:      on,
		EnhancedAnalyzers: on,
		Capabilities: map[string]bool{
			"research_document_analysis": on,
			"semantic_search":            on,
			"enhanced_intelligence":      on,
			"context_aware_analysis":     on,
			"web_research":               e.caps.WebSearch,
		},
	}
}
