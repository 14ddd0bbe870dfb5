package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/normalize"
)

// 确定性档位的固定置信度
const (
	PatternConfidence = 0.6
	UnknownProduct    = "Unknown"
)

// patternTier 档位四：不发起网络请求，直接由页面结构合成记录
type patternTier struct {
	now func() time.Time
}

func (t *patternTier) Name() string { return model.MethodPatternMatch }

func (t *patternTier) Attempt(_ context.Context, req *Request) (*model.IntelligenceRecord, error) {
	c, name := req.Content, req.ProductName
	if c == nil {
		c = &model.StructuredContent{}
	}

	title := c.Title
	if title == "" {
		title = name + " Page"
	}

	rec := &model.IntelligenceRecord{
		Offer: model.OfferIntelligence{
			Products:          []string{name},
			Pricing:           append([]string{}, c.PricingMentions...),
			Bonuses:           []string{},
			Guarantees:        []string{},
			ValuePropositions: []string{"Core offer: " + name},
			Insights: []string{
				"Offer analysis: " + name + " appears to be the main offering",
				"Target audience: General consumers interested in " + name,
				"Content focus: " + name + " presentation and benefits",
			},
		},
		Psychology: model.PsychologyIntelligence{
			EmotionalTriggers:    append([]model.EmotionalTrigger{}, c.EmotionalTriggers...),
			PainPoints:           []string{"General consumer needs addressed by " + name},
			TargetAudience:       "Customers interested in " + name,
			PersuasionTechniques: []string{name + " benefits presentation", name + " value proposition emphasis"},
		},
		Competitive: model.CompetitiveIntelligence{
			Opportunities: []string{
				"Alternative " + name + " positioning possible",
				"Competitive differentiation opportunities for " + name,
				name + " market gap analysis needed",
			},
			Gaps:        []string{"Detailed competitive analysis for " + name + " requires AI providers"},
			Positioning: name + " standard market approach",
			Advantages:  []string{name + " unique selling proposition"},
			Weaknesses:  []string{"Limited " + name + " analysis without AI providers"},
		},
		Content: model.ContentIntelligence{
			KeyMessages:      []string{title},
			SuccessStories:   []string{},
			SocialProof:      []string{},
			ContentStructure: fmt.Sprintf("%s page with %d words", name, c.WordCount),
		},
		Brand: model.BrandIntelligence{
			ToneVoice:        "Professional",
			MessagingStyle:   "Direct",
			BrandPositioning: name + " market competitor",
		},
		CampaignSuggestions: []string{
			"Develop unique positioning for " + name,
			"Create compelling value propositions for " + name,
			"Build competitive differentiation for " + name,
			"Enhance social proof elements for " + name,
		},
		SourceURL:         req.URL,
		PageTitle:         c.Title,
		ProductName:       name,
		AnalysisTimestamp: t.now().UTC(),
		RawContent:        model.Truncate(c.Content, 1000),
		AnalysisMethod:    model.MethodPatternMatch,
		AnalysisNote:      "Fallback analysis for " + name + " - AI providers recommended for enhanced insights",
		DiagnosticsKey:    "load_balancing_analysis",
		Diagnostics: model.Diagnostics{
			"load_balancing_available": true,
			"load_balancing_enabled":   false,
			"fallback_reason":          "AI provider system not available",
		},
	}
	if rec.PageTitle == "" {
		rec.PageTitle = name + " Analyzed Page"
	}

	rec = normalize.SanitizeRecord(rec, name)
	rec.ConfidenceScore = PatternConfidence
	metrics.AnalysisTier.WithLabelValues(model.MethodPatternMatch).Inc()
	logger.Log.Infof("模式匹配分析完成: %s", name)
	return rec, nil
}

// errorRecord 彻底失败时的记录，置信度固定为 0
func (e *Engine) errorRecord(pageURL string, err error) *model.IntelligenceRecord {
	msg := err.Error()
	rec := &model.IntelligenceRecord{
		Offer: model.OfferIntelligence{
			Products: []string{}, Pricing: []string{}, Bonuses: []string{},
			Guarantees: []string{}, ValuePropositions: []string{}, Insights: []string{},
		},
		Psychology: model.PsychologyIntelligence{
			EmotionalTriggers: []model.EmotionalTrigger{}, PainPoints: []string{},
			TargetAudience: "Unknown", PersuasionTechniques: []string{},
		},
		Competitive: model.CompetitiveIntelligence{
			Opportunities: []string{"Analysis failed - manual review required"},
			Gaps:          []string{}, Positioning: "Unknown", Advantages: []string{}, Weaknesses: []string{},
		},
		Content: model.ContentIntelligence{
			KeyMessages: []string{}, SuccessStories: []string{}, SocialProof: []string{},
			ContentStructure: "Could not analyze",
		},
		Brand: model.BrandIntelligence{ToneVoice: "Unknown", MessagingStyle: "Unknown", BrandPositioning: "Unknown"},
		CampaignSuggestions: []string{
			"Manual analysis required due to technical error",
			"Check URL accessibility",
			"Verify site allows scraping",
		},
		SourceURL:         pageURL,
		PageTitle:         "Analysis Failed",
		ProductName:       UnknownProduct,
		AnalysisTimestamp: e.now().UTC(),
		AnalysisMethod:    model.MethodErrorFallback,
		ErrorMessage:      msg,
		AnalysisNote:      "Analysis failed: " + msg,
		DiagnosticsKey:    "load_balancing_analysis",
		Diagnostics: model.Diagnostics{
			"load_balancing_available": e.caps.LoadBalanced,
			"load_balancing_enabled":   false,
			"error_occurred":           true,
		},
	}
	// 错误信息可能来自页面或模型，同样不能带出占位词
	rec = normalize.SanitizeRecord(rec, UnknownProduct)
	rec.ConfidenceScore = 0
	metrics.AnalysisTier.WithLabelValues(model.MethodErrorFallback).Inc()
	return rec
}
