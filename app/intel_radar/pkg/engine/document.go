package engine

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/normalize"
)

const (
	DocumentConfidence    = 0.7
	documentResearchBoost = 0.1
	maxExtractedText      = 1000
	maxDocumentFindings   = 5

	documentQuery        = "document analysis insights market research"
	documentInsightQuery = "document analysis market insights"
	documentQueryTopK    = 3
)

var (
	businessTerms = []string{"strategy", "market", "customer", "revenue", "growth", "competitive"}

	percentPattern = regexp.MustCompile(`\d+%`)
	dollarPattern  = regexp.MustCompile(`\$[\d,]+`)
)

// DocumentContent 文档内容层面的发现
type DocumentContent struct {
	KeyInsights         []string `json:"key_insights"`
	StrategiesMentioned []string `json:"strategies_mentioned"`
	DataPoints          []string `json:"data_points"`
}

// DocumentCompetitive 文档中的竞争机会
type DocumentCompetitive struct {
	Opportunities []string `json:"opportunities"`
	MarketGaps    []string `json:"market_gaps"`
}

// DocumentIntelligence 上传文档的分析结果
type DocumentIntelligence struct {
	Content              DocumentContent     `json:"content_intelligence"`
	Competitive          DocumentCompetitive `json:"competitive_intelligence"`
	ContentOpportunities []string            `json:"content_opportunities"`
	ExtractedText        string              `json:"extracted_text"`
	ConfidenceScore      float64             `json:"confidence_score"`
	AnalysisMethod       string              `json:"analysis_method"`
	RAGEnhanced          bool                `json:"rag_enhanced"`
	EnhancedIntelligence map[string]any      `json:"enhanced_intelligence,omitempty"`
	Error                string              `json:"error,omitempty"`
}

// AnalyzeDocument 按纯文本解析上传的文档；带上下文文档且研究系统可用时追加研究洞察。
// 二进制内容返回 document_analysis_failed，从不返回错误
func (e *Engine) AnalyzeDocument(ctx context.Context, content []byte, ext string, contextDocs []string) (out *DocumentIntelligence) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("文档分析 panic: %v", r)
			out = failedDocument(fmt.Errorf("panic: %v", r))
		}
	}()

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if bytes.IndexByte(content, 0) >= 0 {
		logger.Log.Errorf("文档分析失败: .%s 不是文本文件", ext)
		return failedDocument(fmt.Errorf("unsupported binary document (.%s)", ext))
	}
	// 丢弃非法 UTF-8 字节
	text := strings.ToValidUTF8(string(content), "")

	out = &DocumentIntelligence{
		Content: DocumentContent{
			KeyInsights:         keyPhrases(text),
			StrategiesMentioned: []string{"Document analysis completed"},
			DataPoints:          dataPoints(text),
		},
		Competitive: DocumentCompetitive{
			Opportunities: []string{"Document contains market insights"},
			MarketGaps:    []string{},
		},
		ContentOpportunities: []string{
			"Create content based on document insights",
			"Develop case studies from examples",
		},
		ExtractedText:   model.Truncate(text, maxExtractedText),
		ConfidenceScore: DocumentConfidence,
		AnalysisMethod:  model.MethodDocument,
	}

	if e.research != nil && len(contextDocs) > 0 {
		if err := e.enrichDocument(ctx, out, contextDocs); err != nil {
			logger.Log.Errorf("文档研究增强失败: %v", err)
		}
	}
	metrics.AnalysisTier.WithLabelValues(out.AnalysisMethod).Inc()
	logger.Log.Infof("文档分析完成: %d 字节 (confidence: %.2f, rag=%v)", len(content), out.ConfidenceScore, out.RAGEnhanced)
	return out
}

func (e *Engine) enrichDocument(ctx context.Context, out *DocumentIntelligence, docs []string) error {
	sys := e.research()
	for i, doc := range docs {
		if err := sys.AddDocument(ctx, fmt.Sprintf("context_doc_%d", i), doc, nil); err != nil {
			return err
		}
	}
	chunks, err := sys.Query(ctx, documentQuery, documentQueryTopK)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	insight, err := sys.Generate(ctx, documentInsightQuery, chunks)
	if err != nil {
		return err
	}
	out.EnhancedIntelligence = insight.Map()
	out.RAGEnhanced = true
	out.ConfidenceScore = math.Min(out.ConfidenceScore+documentResearchBoost, normalize.MaxResearchConfidence)
	return nil
}

func failedDocument(err error) *DocumentIntelligence {
	return &DocumentIntelligence{
		Content:              DocumentContent{KeyInsights: []string{"Document processing failed"}},
		Competitive:          DocumentCompetitive{Opportunities: []string{}},
		ContentOpportunities: []string{},
		AnalysisMethod:       model.MethodDocumentFailed,
		Error:                err.Error(),
	}
}

// keyPhrases 文本中出现的业务词，最多 5 个
func keyPhrases(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, term := range businessTerms {
		if strings.Contains(lower, term) {
			out = append(out, "Contains "+term+" insights")
		}
	}
	if len(out) > maxDocumentFindings {
		out = out[:maxDocumentFindings]
	}
	return out
}

// dataPoints 先百分比后金额，最多 5 个
func dataPoints(text string) []string {
	out := append(percentPattern.FindAllString(text, -1), dollarPattern.FindAllString(text, -1)...)
	if out == nil {
		return []string{}
	}
	if len(out) > maxDocumentFindings {
		out = out[:maxDocumentFindings]
	}
	return out
}
