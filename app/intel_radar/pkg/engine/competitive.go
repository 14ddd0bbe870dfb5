package engine

import (
	"context"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

const competitiveAnalyzerType = "CompetitiveAnalyzer"

// CompetitiveMeta 竞品分析附加信息
type CompetitiveMeta struct {
	AnalyzerType             string    `json:"analyzer_type"`
	CompetitiveFocus         bool      `json:"competitive_focus"`
	CampaignID               string    `json:"campaign_id,omitempty"`
	ResearchDocsCount        int       `json:"research_docs_count"`
	AnalysisTimestamp        time.Time `json:"analysis_timestamp"`
	RAGCapabilitiesAvailable bool      `json:"rag_capabilities_available"`
}

// CompetitorReport 情报记录加竞品元数据，JSON 中记录字段平铺在顶层
type CompetitorReport struct {
	*model.IntelligenceRecord
	CompetitiveAnalysis CompetitiveMeta `json:"competitive_analysis"`
}

// AnalyzeCompetitor 有研究文档且研究系统可用时走研究增强分析，否则走标准分析
func (e *Engine) AnalyzeCompetitor(ctx context.Context, pageURL, campaignID string, docs []string) *CompetitorReport {
	var rec *model.IntelligenceRecord
	if len(docs) > 0 && e.research != nil {
		rec = e.AnalyzeWithResearchContext(ctx, pageURL, docs)
	} else {
		rec = e.Analyze(ctx, pageURL)
	}

	logger.Log.Infof("竞品分析完成: %s", pageURL)
	return &CompetitorReport{
		IntelligenceRecord: rec,
		CompetitiveAnalysis: CompetitiveMeta{
			AnalyzerType:             competitiveAnalyzerType,
			CompetitiveFocus:         true,
			CampaignID:               campaignID,
			ResearchDocsCount:        len(docs),
			AnalysisTimestamp:        e.now().UTC(),
			RAGCapabilitiesAvailable: e.caps.Research,
		},
	}
}
