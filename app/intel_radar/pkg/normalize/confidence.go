package normalize

import (
	"math"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// 置信度上限，自动提取不应给出接近确定的分数
const (
	MaxConfidence         = 0.85
	MaxResearchConfidence = 0.90
)

// Score 根据记录的丰富程度计算置信度
func Score(rec *model.IntelligenceRecord, content *model.StructuredContent) float64 {
	if rec == nil {
		return 0
	}
	if content == nil {
		content = &model.StructuredContent{}
	}

	score := 0.30
	add := func(ok bool, v float64) {
		if ok {
			score += v
		}
	}

	o := rec.Offer
	add(len(o.Products) > 0, 0.05)
	add(len(o.Pricing) > 0, 0.05)
	add(len(o.ValuePropositions) > 0, 0.05)
	add(len(o.Guarantees) > 0, 0.03)
	add(len(o.Bonuses) > 0, 0.02)

	p := rec.Psychology
	add(len(p.EmotionalTriggers) > 0, 0.05)
	add(len(p.PainPoints) > 0, 0.05)
	add(p.TargetAudience != "" && p.TargetAudience != "General audience", 0.03)
	add(len(p.PersuasionTechniques) > 0, 0.02)

	c := rec.Content
	add(len(c.KeyMessages) > 0, 0.05)
	add(len(c.SocialProof) > 0, 0.04)
	add(len(c.SuccessStories) > 0, 0.03)
	add(strings.Contains(c.ContentStructure, "sales page"), 0.03)

	k := rec.Competitive
	add(len(k.Opportunities) > 0, 0.04)
	add(len(k.Advantages) > 0, 0.03)
	add(k.Positioning != "" && k.Positioning != "Standard approach", 0.03)

	b := rec.Brand
	add(b.ToneVoice != "" && b.ToneVoice != "Professional", 0.03)
	add(b.MessagingStyle != "" && b.MessagingStyle != "Direct", 0.03)
	add(b.BrandPositioning != "" && b.BrandPositioning != "Market competitor", 0.04)

	// 页面篇幅只取一档
	switch {
	case content.WordCount > 1000:
		score += 0.05
	case content.WordCount > 500:
		score += 0.02
	}
	add(len(content.EmotionalTriggers) > 0, 0.03)
	add(len(content.PricingMentions) > 0, 0.03)

	populated := 0
	for _, ok := range rec.Categories() {
		if ok {
			populated++
		}
	}
	score += float64(populated) / 5 * 0.1

	ceiling := MaxConfidence
	if rec.ResearchEnhanced {
		score += math.Min(math.Max(rec.RAGConfidence, 0)*0.1, 0.1)
		ceiling = MaxResearchConfidence
	}

	final := math.Min(score, ceiling)
	logger.Log.Debugf("置信度计算: raw=%.2f final=%.2f", score, final)
	return final
}
