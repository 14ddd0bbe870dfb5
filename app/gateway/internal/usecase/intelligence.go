package usecase

import (
	"context"
	"net/url"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/repo"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
)

// Analyzer 由 engine.Engine 实现
type Analyzer interface {
	Analyze(ctx context.Context, pageURL string) *model.IntelligenceRecord
	AnalyzeWithResearchContext(ctx context.Context, pageURL string, docs []string) *model.IntelligenceRecord
	AnalyzeEnhanced(ctx context.Context, pageURL string, opts engine.EnhancedOptions) *model.IntelligenceRecord
	AnalyzeDocument(ctx context.Context, content []byte, ext string, contextDocs []string) *engine.DocumentIntelligence
	DetectVSL(ctx context.Context, pageURL string) (*engine.VSLDetection, error)
	AnalyzeVSL(ctx context.Context, videoURL string, opts engine.VSLOptions) *engine.VSLTranscript
	AnalyzeCompetitor(ctx context.Context, pageURL, campaignID string, docs []string) *engine.CompetitorReport
	Health() engine.HealthReport
	RAGAvailability() engine.RAGAvailability
	LoadBalancingStats() map[string]provider.UsageStats
}

// AnalyzeInput 分析请求
type AnalyzeInput struct {
	URL           string   `json:"url"`
	ResearchDocs  []string `json:"research_docs,omitempty"`
	Enhanced      bool     `json:"enhanced,omitempty"`
	CampaignID    string   `json:"campaign_id,omitempty"`
	AnalysisDepth string   `json:"analysis_depth,omitempty"`
	SkipVSL       bool     `json:"skip_vsl,omitempty"`
}

// DocumentInput 文档分析请求，Content 为文档原文
type DocumentInput struct {
	Content       string   `json:"content"`
	FileExtension string   `json:"file_extension,omitempty"`
	ContextDocs   []string `json:"context_docs,omitempty"`
}

// VSLInput VSL 检测与分析请求
type VSLInput struct {
	URL         string   `json:"url"`
	CampaignID  string   `json:"campaign_id,omitempty"`
	ContextDocs []string `json:"context_docs,omitempty"`
}

// CompetitorInput 竞品分析请求
type CompetitorInput struct {
	URL          string   `json:"url"`
	CampaignID   string   `json:"campaign_id,omitempty"`
	ResearchDocs []string `json:"research_docs,omitempty"`
}

// AnalyzeResult 未配置数据库时 ID 为空
type AnalyzeResult struct {
	ID           string                    `json:"id,omitempty"`
	Intelligence *model.IntelligenceRecord `json:"intelligence"`
}

// LoadBalancingReport 负载均衡统计
type LoadBalancingReport struct {
	Enabled bool                           `json:"load_balancing_enabled"`
	Stats   map[string]provider.UsageStats `json:"provider_stats"`
}

// IntelligenceUseCase 情报分析业务逻辑
type IntelligenceUseCase struct {
	analyzer Analyzer
	repo     repo.IntelligenceRepo
	log      *log.Helper
}

// NewIntelligenceUseCase repo 可以为空
func NewIntelligenceUseCase(analyzer Analyzer, repo repo.IntelligenceRepo, logger log.Logger) *IntelligenceUseCase {
	return &IntelligenceUseCase{analyzer: analyzer, repo: repo, log: log.NewHelper(logger)}
}

// Analyze 分析页面，配置了数据库时保存结果；保存失败不影响返回
func (uc *IntelligenceUseCase) Analyze(ctx context.Context, in *AnalyzeInput) (*AnalyzeResult, error) {
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}

	var rec *model.IntelligenceRecord
	switch {
	case in.Enhanced:
		rec = uc.analyzer.AnalyzeEnhanced(ctx, in.URL, engine.EnhancedOptions{
			CampaignID:    in.CampaignID,
			AnalysisDepth: in.AnalysisDepth,
			SkipVSL:       in.SkipVSL,
			ResearchDocs:  in.ResearchDocs,
		})
	case len(in.ResearchDocs) > 0:
		rec = uc.analyzer.AnalyzeWithResearchContext(ctx, in.URL, in.ResearchDocs)
	default:
		rec = uc.analyzer.Analyze(ctx, in.URL)
	}

	out := &AnalyzeResult{Intelligence: rec}
	if uc.repo != nil {
		id, err := uc.repo.Save(ctx, rec)
		if err != nil {
			uc.log.Errorf("save intelligence for %s: %v", in.URL, err)
		} else {
			out.ID = id
		}
	}
	return out, nil
}

// Get 读取已保存的记录
func (uc *IntelligenceUseCase) Get(ctx context.Context, id string) (*model.IntelligenceRecord, error) {
	if uc.repo == nil {
		return nil, errors.ServiceUnavailable("STORAGE_DISABLED", "intelligence storage is not configured")
	}
	if id == "" {
		return nil, errors.BadRequest("INVALID_ID", "id is required")
	}
	stored, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return stored.Record, nil
}

// AnalyzeDocument 分析上传的文档，结果不入库
func (uc *IntelligenceUseCase) AnalyzeDocument(ctx context.Context, in *DocumentInput) (*engine.DocumentIntelligence, error) {
	if in.Content == "" {
		return nil, errors.BadRequest("EMPTY_DOCUMENT", "content is required")
	}
	ext := in.FileExtension
	if ext == "" {
		ext = "txt"
	}
	return uc.analyzer.AnalyzeDocument(ctx, []byte(in.Content), ext, in.ContextDocs), nil
}

// DetectVSL 页面抓取失败返回 502
func (uc *IntelligenceUseCase) DetectVSL(ctx context.Context, pageURL string) (*engine.VSLDetection, error) {
	if err := validateURL(pageURL); err != nil {
		return nil, err
	}
	out, err := uc.analyzer.DetectVSL(ctx, pageURL)
	if err != nil {
		return nil, errors.New(502, "FETCH_FAILED", err.Error())
	}
	return out, nil
}

func (uc *IntelligenceUseCase) AnalyzeVSL(ctx context.Context, in *VSLInput) (*engine.VSLTranscript, error) {
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}
	return uc.analyzer.AnalyzeVSL(ctx, in.URL, engine.VSLOptions{CampaignID: in.CampaignID, ContextDocs: in.ContextDocs}), nil
}

// AnalyzeCompetitor 竞品分析，配置了数据库时同样保存情报记录
func (uc *IntelligenceUseCase) AnalyzeCompetitor(ctx context.Context, in *CompetitorInput) (*engine.CompetitorReport, error) {
	if err := validateURL(in.URL); err != nil {
		return nil, err
	}
	out := uc.analyzer.AnalyzeCompetitor(ctx, in.URL, in.CampaignID, in.ResearchDocs)
	if uc.repo != nil {
		if _, err := uc.repo.Save(ctx, out.IntelligenceRecord); err != nil {
			uc.log.Errorf("save competitor intelligence for %s: %v", in.URL, err)
		}
	}
	return out, nil
}

func (uc *IntelligenceUseCase) RAGAvailability() engine.RAGAvailability {
	return uc.analyzer.RAGAvailability()
}

func (uc *IntelligenceUseCase) Health() engine.HealthReport {
	return uc.analyzer.Health()
}

func (uc *IntelligenceUseCase) LoadBalancing() *LoadBalancingReport {
	return &LoadBalancingReport{
		Enabled: uc.analyzer.Health().LoadBalancingAvailable,
		Stats:   uc.analyzer.LoadBalancingStats(),
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.BadRequest("INVALID_URL", "url must be an absolute http(s) URL")
	}
	return nil
}
