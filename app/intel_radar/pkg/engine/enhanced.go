package engine

import (
	"context"
	"math"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/normalize"
)

const (
	DefaultAnalysisDepth = "comprehensive"
	researchBonus        = 0.05
)

var videoKeywords = []string{"video", "youtube", "vimeo", "player", "watch", "play"}

// EnhancedOptions 增强分析参数
type EnhancedOptions struct {
	CampaignID    string
	AnalysisDepth string
	SkipVSL       bool
	ResearchDocs  []string
}

// AnalyzeEnhanced 在基础记录上追加营销角度、可执行建议、技术分析与视频检测
func (e *Engine) AnalyzeEnhanced(ctx context.Context, pageURL string, opts EnhancedOptions) *model.IntelligenceRecord {
	var rec *model.IntelligenceRecord
	if len(opts.ResearchDocs) > 0 && e.research != nil {
		rec = e.AnalyzeWithResearchContext(ctx, pageURL, opts.ResearchDocs)
	} else {
		rec = e.Analyze(ctx, pageURL)
	}

	name := rec.ProductName
	depth := opts.AnalysisDepth
	if depth == "" {
		depth = DefaultAnalysisDepth
	}

	rec.IntelligenceID = "intel_" + shortID()
	rec.AnalysisDepth = depth
	rec.CampaignID = opts.CampaignID
	rec.CampaignAngles = campaignAngles(name)
	rec.ActionableInsights = actionableInsights(name)
	rec.TechnicalAnalysis = technicalAnalysis(name)
	if !opts.SkipVSL {
		rec.VSLAnalysis = detectVideo(rec.RawContent, name)
	}
	rec.AnalysisMethod += model.EnhancedMethodSuffix

	if rec.ResearchEnhanced {
		rec.ConfidenceScore = math.Min(rec.ConfidenceScore+researchBonus, normalize.MaxResearchConfidence)
	}

	logger.Log.Infof("增强分析完成: %s [%s]", name, rec.IntelligenceID)
	return normalize.SanitizeRecord(rec, name)
}

func campaignAngles(name string) *model.CampaignAngles {
	return &model.CampaignAngles{
		PrimaryAngle: "Strategic competitive advantage through " + name + " intelligence",
		AlternativeAngles: []string{
			"Transform results with proven " + name + " insights",
			"Competitive edge through " + name + " analysis",
			"Data-driven " + name + " strategies",
		},
		PositioningStrategy:     "Premium " + name + " intelligence-driven solution",
		TargetAudienceInsights:  []string{name + " business owners", name + " marketing professionals"},
		MessagingFramework:      []string{name + " problem identification", name + " solution presentation", name + " results proof"},
		DifferentiationStrategy: "Intelligence-based " + name + " competitive advantage",
	}
}

func actionableInsights(name string) *model.ActionableInsights {
	return &model.ActionableInsights{
		ImmediateOpportunities: []string{
			"Create comparison content highlighting " + name + " advantages",
			"Develop content addressing " + name + " market gaps",
			"Build authority through unique " + name + " insights",
		},
		ContentCreationIdeas: []string{
			name + " competitive analysis blog posts",
			name + " market insight newsletters",
			name + " educational video content",
		},
		CampaignStrategies: []string{
			"Multi-touch " + name + " educational campaign",
			name + " authority building content series",
			name + " competitive positioning campaign",
		},
		TestingRecommendations: []string{
			"A/B test different " + name + " value propositions",
			"Test " + name + " messaging variations",
			"Optimize " + name + " conversion elements",
		},
	}
}

func technicalAnalysis(name string) *model.TechnicalAnalysis {
	return &model.TechnicalAnalysis{
		PageLoadSpeed:      "Analysis for " + name + " requires additional tools",
		MobileOptimization: true,
		ConversionElements: []string{name + " call-to-action buttons", name + " trust signals", name + " contact information"},
		TrustSignals:       []string{name + " professional design", name + " contact information", name + " security indicators"},
	}
}

// detectVideo 只做关键词检测
func detectVideo(rawContent, name string) *model.VSLAnalysis {
	lower := strings.ToLower(rawContent)
	has := false
	for _, k := range videoKeywords {
		if strings.Contains(lower, k) {
			has = true
			break
		}
	}

	element := "No " + name + " video content found"
	if has {
		element = name + " video content detected"
	}
	return &model.VSLAnalysis{
		HasVideo:            has,
		VideoLengthEstimate: "Unknown",
		VideoType:           "unknown",
		TranscriptAvailable: false,
		KeyVideoElements:    []string{element},
	}
}
