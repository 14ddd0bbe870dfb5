package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// exemptKeys 标识类字段，替换时跳过
var exemptKeys = map[string]bool{
	"source_url":         true,
	"product_name":       true,
	"analysis_method":    true,
	"analysis_timestamp": true,
	"analysis_depth":     true,
	"intelligence_id":    true,
	"campaign_id":        true,
	"diagnostics_key":    true,
	"provider":           true,
	"provider_selected":  true,
	"provider_used":      true,
	"timestamp":          true,
}

type section int

const (
	sectionNone section = iota
	sectionOffer
	sectionPsychology
	sectionCompetitive
	sectionContent
	sectionBrand
)

var sectionKeywords = []struct {
	keyword string
	section section
}{
	{"offer", sectionOffer},
	{"psychology", sectionPsychology},
	{"competitive", sectionCompetitive},
	{"content", sectionContent},
	{"brand", sectionBrand},
}

// Seed 返回只含默认值的记录，默认值都带产品名
func Seed(content *model.StructuredContent, productName string) *model.IntelligenceRecord {
	if content == nil {
		content = &model.StructuredContent{}
	}

	keyMessage := content.Title
	if keyMessage == "" {
		keyMessage = productName + " Page"
	}

	return &model.IntelligenceRecord{
		Offer: model.OfferIntelligence{
			Products:          []string{productName},
			Pricing:           append([]string{}, content.PricingMentions...),
			Bonuses:           []string{},
			Guarantees:        []string{},
			ValuePropositions: []string{"Core offer: " + productName},
			Insights:          []string{},
		},
		Psychology: model.PsychologyIntelligence{
			EmotionalTriggers:    append([]model.EmotionalTrigger{}, content.EmotionalTriggers...),
			PainPoints:           []string{},
			TargetAudience:       "Customers interested in " + productName,
			PersuasionTechniques: []string{},
		},
		Competitive: model.CompetitiveIntelligence{
			Opportunities: []string{},
			Gaps:          []string{},
			Positioning:   productName + " market positioning",
			Advantages:    []string{},
			Weaknesses:    []string{},
		},
		Content: model.ContentIntelligence{
			KeyMessages:      []string{keyMessage},
			SuccessStories:   []string{},
			SocialProof:      []string{},
			ContentStructure: productName + " sales page",
		},
		Brand: model.BrandIntelligence{
			ToneVoice:        "Professional",
			MessagingStyle:   "Direct",
			BrandPositioning: productName + " market competitor",
		},
	}
}

// Normalize 把模型返回的自由文本整理为情报记录，任何输入都不会失败
func Normalize(raw string, content *model.StructuredContent, productName string) *model.IntelligenceRecord {
	rec := Seed(content, productName)
	sub := NewSubstituter(productName)

	current := sectionNone
	for _, line := range strings.Split(sub.Apply(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = sub.Apply(line)

		if s := headerSection(line); s != sectionNone {
			current = s
		}

		if current == sectionNone || !isBullet(line) {
			continue
		}
		_, size := utf8.DecodeRuneInString(line)
		insight := strings.TrimSpace(line[size:])
		if insight == "" {
			continue
		}
		insight = sub.Apply(insight)

		switch current {
		case sectionOffer:
			rec.Offer.Insights = append(rec.Offer.Insights, insight)
		case sectionPsychology:
			rec.Psychology.PersuasionTechniques = append(rec.Psychology.PersuasionTechniques, insight)
		case sectionCompetitive:
			rec.Competitive.Opportunities = append(rec.Competitive.Opportunities, insight)
		case sectionContent:
			rec.Content.KeyMessages = append(rec.Content.KeyMessages, insight)
		}
	}

	return SanitizeRecord(rec, productName)
}

// headerSection 行内同时出现类别关键词与 "intelligence" 时视为段落标题
func headerSection(line string) section {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "intelligence") {
		return sectionNone
	}
	for _, k := range sectionKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.section
		}
	}
	return sectionNone
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}

// SanitizeRecord 递归遍历整条记录，对每个字符串叶子执行占位词替换
func SanitizeRecord(rec *model.IntelligenceRecord, productName string) *model.IntelligenceRecord {
	if rec == nil {
		return nil
	}
	sub := NewSubstituter(productName)
	if sub.Name() == "" {
		return rec
	}

	var out model.IntelligenceRecord
	if err := substituteJSON(rec, &out, sub, exemptKeys); err != nil {
		// 记录中混入了无法编码的诊断值，退回到只处理已知字段
		logger.Log.Warnf("记录整体替换失败，改为逐字段替换: %v", err)
		sanitizeFields(rec, sub)
		return rec
	}
	return &out
}

func sanitizeFields(rec *model.IntelligenceRecord, sub *Substituter) {
	list := func(items []string) {
		for i := range items {
			items[i] = sub.Apply(items[i])
		}
	}

	list(rec.Offer.Products)
	list(rec.Offer.Pricing)
	list(rec.Offer.Bonuses)
	list(rec.Offer.Guarantees)
	list(rec.Offer.ValuePropositions)
	list(rec.Offer.Insights)
	for i := range rec.Psychology.EmotionalTriggers {
		t := &rec.Psychology.EmotionalTriggers[i]
		t.Trigger, t.Context = sub.Apply(t.Trigger), sub.Apply(t.Context)
	}
	list(rec.Psychology.PainPoints)
	list(rec.Psychology.PersuasionTechniques)
	rec.Psychology.TargetAudience = sub.Apply(rec.Psychology.TargetAudience)
	list(rec.Competitive.Opportunities)
	list(rec.Competitive.Gaps)
	list(rec.Competitive.Advantages)
	list(rec.Competitive.Weaknesses)
	rec.Competitive.Positioning = sub.Apply(rec.Competitive.Positioning)
	list(rec.Content.KeyMessages)
	list(rec.Content.SuccessStories)
	list(rec.Content.SocialProof)
	rec.Content.ContentStructure = sub.Apply(rec.Content.ContentStructure)
	rec.Brand.ToneVoice = sub.Apply(rec.Brand.ToneVoice)
	rec.Brand.MessagingStyle = sub.Apply(rec.Brand.MessagingStyle)
	rec.Brand.BrandPositioning = sub.Apply(rec.Brand.BrandPositioning)
	list(rec.CampaignSuggestions)
	rec.PageTitle = sub.Apply(rec.PageTitle)
	rec.RawContent = sub.Apply(rec.RawContent)
	rec.AnalysisNote = sub.Apply(rec.AnalysisNote)
	rec.ErrorMessage = sub.Apply(rec.ErrorMessage)
	if rec.Diagnostics != nil {
		rec.Diagnostics = Substitute(FromAny(map[string]any(rec.Diagnostics)), sub, exemptKeys).Any().(map[string]any)
	}
}
