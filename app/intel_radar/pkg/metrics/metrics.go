// Package metrics 汇总分析链路的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intel_radar"

var (
	// ProviderSelections 每个提供商被选中的次数
	ProviderSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_selections_total",
		Help:      "Number of times a provider was selected for an analysis.",
	}, []string{"provider"})

	// ProviderErrors 提供商调用失败次数（已被吸收为错误文本）
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Number of failed provider calls absorbed into error payloads.",
	}, []string{"provider"})

	// AnalysisTier 每种 analysis_method 产出的记录数
	AnalysisTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_tier_total",
		Help:      "Number of intelligence records produced per analysis method.",
	}, []string{"method"})
)

// Handler 返回 /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
