package model

import "time"

// 分析方法标识，写入 IntelligenceRecord.AnalysisMethod
const (
	MethodLoadBalanced    = "load_balanced_ai"
	MethodUltraCheap      = "ultra_cheap_ai"
	MethodExpensiveOpenAI = "expensive_openai_fallback"
	MethodPatternMatch    = "fallback_pattern_matching"
	MethodErrorFallback   = "error_fallback"
	MethodRAGEnhanced     = "rag_enhanced_analysis"
	MethodDocument        = "document_analysis"
	MethodDocumentFailed  = "document_analysis_failed"
	EnhancedMethodSuffix  = "_enhanced"
)

// PageContent 抓取到的页面
type PageContent struct {
	Title   string
	Content string // 清洗后的纯文本
	HTML    string
	URL     string
}

// EmotionalTrigger 情绪触发词及其上下文
type EmotionalTrigger struct {
	Trigger string `json:"trigger"`
	Context string `json:"context"`
}

// StructuredContent 从页面文本中提取出的结构化信息
type StructuredContent struct {
	Title             string             `json:"title"`
	Content           string             `json:"content"`
	URL               string             `json:"url"`
	PricingMentions   []string           `json:"pricing_mentions"`
	EmotionalTriggers []EmotionalTrigger `json:"emotional_triggers"`
	WordCount         int                `json:"word_count"`
	ContentSections   map[string]string  `json:"content_sections"`
}

// OfferIntelligence 报价相关情报
type OfferIntelligence struct {
	Products          []string `json:"products"`
	Pricing           []string `json:"pricing"`
	Bonuses           []string `json:"bonuses"`
	Guarantees        []string `json:"guarantees"`
	ValuePropositions []string `json:"value_propositions"`
	Insights          []string `json:"insights"`
}

// PsychologyIntelligence 受众心理情报
type PsychologyIntelligence struct {
	EmotionalTriggers    []EmotionalTrigger `json:"emotional_triggers"`
	PainPoints           []string           `json:"pain_points"`
	TargetAudience       string             `json:"target_audience"`
	PersuasionTechniques []string           `json:"persuasion_techniques"`
}

// CompetitiveIntelligence 竞争态势情报
type CompetitiveIntelligence struct {
	Opportunities []string `json:"opportunities"`
	Gaps          []string `json:"gaps"`
	Positioning   string   `json:"positioning"`
	Advantages    []string `json:"advantages"`
	Weaknesses    []string `json:"weaknesses"`
}

// ContentIntelligence 内容情报
type ContentIntelligence struct {
	KeyMessages      []string `json:"key_messages"`
	SuccessStories   []string `json:"success_stories"`
	SocialProof      []string `json:"social_proof"`
	ContentStructure string   `json:"content_structure"`
}

// BrandIntelligence 品牌调性情报
type BrandIntelligence struct {
	ToneVoice        string `json:"tone_voice"`
	MessagingStyle   string `json:"messaging_style"`
	BrandPositioning string `json:"brand_positioning"`
}

// Diagnostics 各档位附带的诊断信息（使用的提供商、成本、节省、错误等）
type Diagnostics map[string]any

// CampaignAngles 营销切入角度
type CampaignAngles struct {
	PrimaryAngle            string   `json:"primary_angle"`
	AlternativeAngles       []string `json:"alternative_angles"`
	PositioningStrategy     string   `json:"positioning_strategy"`
	TargetAudienceInsights  []string `json:"target_audience_insights"`
	MessagingFramework      []string `json:"messaging_framework"`
	DifferentiationStrategy string   `json:"differentiation_strategy"`
}

// ActionableInsights 可执行建议
type ActionableInsights struct {
	ImmediateOpportunities []string `json:"immediate_opportunities"`
	ContentCreationIdeas   []string `json:"content_creation_ideas"`
	CampaignStrategies     []string `json:"campaign_strategies"`
	TestingRecommendations []string `json:"testing_recommendations"`
}

// TechnicalAnalysis 页面技术层面的粗略分析
type TechnicalAnalysis struct {
	PageLoadSpeed      string   `json:"page_load_speed"`
	MobileOptimization bool     `json:"mobile_optimization"`
	ConversionElements []string `json:"conversion_elements"`
	TrustSignals       []string `json:"trust_signals"`
}

// VSLAnalysis 视频销售信（VSL）检测结果
type VSLAnalysis struct {
	HasVideo            bool     `json:"has_video"`
	VideoLengthEstimate string   `json:"video_length_estimate"`
	VideoType           string   `json:"video_type"`
	TranscriptAvailable bool     `json:"transcript_available"`
	KeyVideoElements    []string `json:"key_video_elements"`
}

// IntelligenceRecord 规范化后的竞争情报记录
type IntelligenceRecord struct {
	Offer       OfferIntelligence       `json:"offer_intelligence"`
	Psychology  PsychologyIntelligence  `json:"psychology_intelligence"`
	Competitive CompetitiveIntelligence `json:"competitive_intelligence"`
	Content     ContentIntelligence     `json:"content_intelligence"`
	Brand       BrandIntelligence       `json:"brand_intelligence"`

	CampaignSuggestions []string `json:"campaign_suggestions,omitempty"`

	SourceURL         string    `json:"source_url"`
	PageTitle         string    `json:"page_title"`
	ProductName       string    `json:"product_name"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
	ConfidenceScore   float64   `json:"confidence_score"`
	RawContent        string    `json:"raw_content"`
	AnalysisMethod    string    `json:"analysis_method"`
	AnalysisNote      string    `json:"analysis_note,omitempty"`
	ErrorMessage      string    `json:"error_message,omitempty"`

	// DiagnosticsKey 为诊断块在原始输出中的名字，如 load_balanced_analysis
	DiagnosticsKey string      `json:"diagnostics_key,omitempty"`
	Diagnostics    Diagnostics `json:"diagnostics,omitempty"`

	// 研究增强
	RAGEnhanced             bool           `json:"rag_enhanced"`
	ResearchEnhanced        bool           `json:"research_enhanced,omitempty"`
	ResearchSources         int            `json:"research_sources,omitempty"`
	RAGConfidence           float64        `json:"rag_confidence,omitempty"`
	ResearchChunksFound     int            `json:"research_chunks_found,omitempty"`
	EnhancedIntelligence    map[string]any `json:"enhanced_intelligence,omitempty"`
	ResearchEnhancementNote string         `json:"research_enhancement_note,omitempty"`
	ResearchDocsProvided    int            `json:"research_docs_provided,omitempty"`
	RAGAvailability         string         `json:"rag_availability,omitempty"`
	RAGEnhancementError     string         `json:"rag_enhancement_error,omitempty"`

	// 增强分析
	IntelligenceID     string              `json:"intelligence_id,omitempty"`
	AnalysisDepth      string              `json:"analysis_depth,omitempty"`
	CampaignID         string              `json:"campaign_id,omitempty"`
	CampaignAngles     *CampaignAngles     `json:"campaign_angles,omitempty"`
	ActionableInsights *ActionableInsights `json:"actionable_insights,omitempty"`
	TechnicalAnalysis  *TechnicalAnalysis  `json:"technical_analysis,omitempty"`
	VSLAnalysis        *VSLAnalysis        `json:"vsl_analysis,omitempty"`
}

// Categories 返回五个顶层情报类别是否非空，顺序为 offer, psychology, content, competitive, brand
func (r *IntelligenceRecord) Categories() []bool {
	o, p, c, k, b := r.Offer, r.Psychology, r.Content, r.Competitive, r.Brand
	return []bool{
		len(o.Products)+len(o.Pricing)+len(o.Bonuses)+len(o.Guarantees)+len(o.ValuePropositions)+len(o.Insights) > 0,
		len(p.EmotionalTriggers)+len(p.PainPoints)+len(p.PersuasionTechniques) > 0 || p.TargetAudience != "",
		len(c.KeyMessages)+len(c.SuccessStories)+len(c.SocialProof) > 0 || c.ContentStructure != "",
		len(k.Opportunities)+len(k.Gaps)+len(k.Advantages)+len(k.Weaknesses) > 0 || k.Positioning != "",
		b.ToneVoice != "" || b.MessagingStyle != "" || b.BrandPositioning != "",
	}
}

// Truncate 按字符（rune）截断，避免切断多字节字符
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
