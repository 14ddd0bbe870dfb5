package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/normalize"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/research"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

const (
	researchQueryPrefix = "competitive analysis market research pricing strategy "
	webResearchResults  = 5

	noResearchContextNote = "No relevant research context found"
	researchUnavailable   = "Research system not available - configure research.enabled"
)

// AnalyzeWithResearchContext 先做标准分析，再用研究文档与网页搜索结果修正置信度
func (e *Engine) AnalyzeWithResearchContext(ctx context.Context, pageURL string, docs []string) *model.IntelligenceRecord {
	rec, content := e.analyze(ctx, pageURL)
	e.enrich(ctx, rec, content, docs)
	return rec
}

// enrich 失败只写入说明字段，不影响基础记录
func (e *Engine) enrich(ctx context.Context, rec *model.IntelligenceRecord, content *model.StructuredContent, docs []string) {
	if rec.AnalysisMethod == model.MethodErrorFallback {
		return
	}
	if e.research == nil {
		if len(docs) > 0 {
			logger.Log.Warn("提供了研究文档，但研究系统不可用")
			rec.ResearchDocsProvided = len(docs)
			rec.RAGAvailability = researchUnavailable
		}
		return
	}
	if len(docs) == 0 && e.searcher == nil {
		return
	}

	if err := e.applyResearch(ctx, rec, content, docs); err != nil {
		logger.Log.Errorf("研究增强失败: %v", err)
		rec.RAGEnhancementError = err.Error()
		rec.ResearchEnhanced = false
	}
}

func (e *Engine) applyResearch(ctx context.Context, rec *model.IntelligenceRecord, content *model.StructuredContent, docs []string) error {
	name := rec.ProductName
	ts := e.now().UTC().Format(time.RFC3339)
	sys := e.research()

	// 1. 入库用户提供的文档
	logger.Log.Infof("添加 %d 篇研究文档", len(docs))
	for i, doc := range docs {
		id := fmt.Sprintf("research_doc_%d_%s", i, shortID())
		if err := sys.AddDocument(ctx, id, doc, map[string]any{
			research.MetaSource: fmt.Sprintf("user_uploaded_doc_%d", i),
			"timestamp":         ts,
			"analysis_url":      rec.SourceURL,
		}); err != nil {
			return err
		}
	}
	sources := len(docs)

	// 2. 网页搜索补充竞品资料，失败时只用用户文档
	if e.searcher != nil {
		n, err := e.addWebResearch(ctx, sys, name, rec.SourceURL, ts)
		if err != nil {
			logger.Log.Warnf("网页搜索失败 [%s]: %v", name, err)
		}
		sources += n
	}
	if sources == 0 {
		rec.ResearchEnhancementNote = noResearchContextNote
		return nil
	}

	// 3. 检索并生成
	query := researchQueryPrefix + name
	logger.Log.Infof("检索研究资料: %s", query)
	chunks, err := sys.Query(ctx, query, e.topK)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		logger.Log.Warn("没有找到相关研究片段")
		rec.ResearchEnhancementNote = noResearchContextNote
		return nil
	}

	insight, err := sys.Generate(ctx, query, chunks)
	if err != nil {
		return err
	}

	rec.EnhancedIntelligence = insight.Map()
	rec.ResearchEnhanced = true
	rec.RAGEnhanced = true
	rec.ResearchSources = sources
	rec.RAGConfidence = insight.ConfidenceScore
	rec.ResearchChunksFound = len(chunks)
	rec.AnalysisMethod = model.MethodRAGEnhanced

	*rec = *normalize.SanitizeRecord(rec, name)
	rec.ConfidenceScore = normalize.Score(rec, content)
	metrics.AnalysisTier.WithLabelValues(model.MethodRAGEnhanced).Inc()
	logger.Log.Infof("研究增强完成: %s (confidence: %.2f)", name, rec.ConfidenceScore)
	return nil
}

func (e *Engine) addWebResearch(ctx context.Context, sys research.System, name, pageURL, ts string) (int, error) {
	resp, err := e.searcher.Search(ctx, &search.Request{
		Query:      search.CompetitorQuery(name),
		Topic:      "general",
		MaxResults: webResearchResults,
	})
	if err != nil {
		return 0, err
	}

	added := 0
	for _, r := range resp.Results {
		// 跳过被分析页面本身
		if r.URL == pageURL || r.Text() == "" {
			continue
		}
		if err := sys.AddDocument(ctx, "web_"+shortID(), r.Title+". "+r.Text(), map[string]any{
			research.MetaSource: r.URL,
			"timestamp":         ts,
			"analysis_url":      pageURL,
		}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func shortID() string {
	return uuid.NewString()[:8]
}
