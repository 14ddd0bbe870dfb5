package engine

import (
	"context"
	"fmt"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/extract"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

const transcriptPending = "VSL analysis requires video processing tools"

// VSLDetection 页面视频检测结果
type VSLDetection struct {
	*model.VSLAnalysis
	ProductName  string `json:"product_name"`
	RAGAvailable bool   `json:"rag_available"`
}

// VSLOptions VSL 分析参数
type VSLOptions struct {
	CampaignID  string
	ContextDocs []string
}

// VSLTranscript 视频转写分析结果，转写本身尚未实现
type VSLTranscript struct {
	TranscriptID             string   `json:"transcript_id"`
	VideoURL                 string   `json:"video_url"`
	TranscriptText           string   `json:"transcript_text"`
	KeyMoments               []string `json:"key_moments"`
	PsychologicalHooks       []string `json:"psychological_hooks"`
	OfferMentions            []string `json:"offer_mentions"`
	CallToActions            []string `json:"call_to_actions"`
	CampaignID               string   `json:"campaign_id,omitempty"`
	RAGEnhanced              bool     `json:"rag_enhanced"`
	ResearchContextAvailable int      `json:"research_context_available,omitempty"`
	RAGEnhancementError      string   `json:"rag_enhancement_error,omitempty"`
}

// DetectVSL 抓取页面并按关键词检测视频内容
func (e *Engine) DetectVSL(ctx context.Context, pageURL string) (*VSLDetection, error) {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		logger.Log.Errorf("VSL 检测失败 [%s]: %v", pageURL, err)
		return nil, err
	}
	content := extract.Structure(page)
	content.URL = pageURL
	name := e.productName(page, content)

	return &VSLDetection{
		VSLAnalysis:  detectVideo(page.Content, name),
		ProductName:  name,
		RAGAvailable: e.caps.Research,
	}, nil
}

// AnalyzeVSL 生成转写分析占位结果；带上下文文档时先入库供后续转写分析使用
func (e *Engine) AnalyzeVSL(ctx context.Context, videoURL string, opts VSLOptions) *VSLTranscript {
	out := &VSLTranscript{
		TranscriptID:       "vsl_" + shortID(),
		VideoURL:           videoURL,
		TranscriptText:     transcriptPending,
		KeyMoments:         []string{},
		PsychologicalHooks: []string{"Video analysis not yet implemented"},
		OfferMentions:      []string{},
		CallToActions:      []string{},
		CampaignID:         opts.CampaignID,
	}
	if e.research == nil || len(opts.ContextDocs) == 0 {
		return out
	}

	sys := e.research()
	for i, doc := range opts.ContextDocs {
		if err := sys.AddDocument(ctx, fmt.Sprintf("vsl_context_%d", i), doc, nil); err != nil {
			logger.Log.Errorf("VSL 研究增强失败: %v", err)
			out.RAGEnhancementError = err.Error()
			return out
		}
	}
	out.RAGEnhanced = true
	out.ResearchContextAvailable = len(opts.ContextDocs)
	return out
}
