package usecase

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

// fakeAnalyzer 记录被调用的分析入口
type fakeAnalyzer struct {
	mu       sync.Mutex
	called   string
	enhanced engine.EnhancedOptions
	docs     []string
}

func (f *fakeAnalyzer) record(method string) *model.IntelligenceRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = method
	return &model.IntelligenceRecord{ProductName: "Glucora", AnalysisMethod: method}
}

func (f *fakeAnalyzer) Analyze(context.Context, string) *model.IntelligenceRecord {
	return f.record(model.MethodPatternMatch)
}

func (f *fakeAnalyzer) AnalyzeWithResearchContext(_ context.Context, _ string, docs []string) *model.IntelligenceRecord {
	f.docs = docs
	return f.record(model.MethodRAGEnhanced)
}

func (f *fakeAnalyzer) AnalyzeEnhanced(_ context.Context, _ string, opts engine.EnhancedOptions) *model.IntelligenceRecord {
	f.enhanced = opts
	return f.record(model.MethodPatternMatch + model.EnhancedMethodSuffix)
}

func (f *fakeAnalyzer) AnalyzeDocument(_ context.Context, content []byte, ext string, docs []string) *engine.DocumentIntelligence {
	f.docs = docs
	return &engine.DocumentIntelligence{ExtractedText: string(content), AnalysisMethod: model.MethodDocument + ":" + ext}
}

func (f *fakeAnalyzer) DetectVSL(context.Context, string) (*engine.VSLDetection, error) {
	return nil, stderrors.New("connection refused")
}

func (f *fakeAnalyzer) AnalyzeVSL(_ context.Context, u string, opts engine.VSLOptions) *engine.VSLTranscript {
	return &engine.VSLTranscript{VideoURL: u, CampaignID: opts.CampaignID, ResearchContextAvailable: len(opts.ContextDocs)}
}

func (f *fakeAnalyzer) AnalyzeCompetitor(ctx context.Context, u, campaignID string, docs []string) *engine.CompetitorReport {
	return &engine.CompetitorReport{
		IntelligenceRecord:  f.Analyze(ctx, u),
		CompetitiveAnalysis: engine.CompetitiveMeta{CampaignID: campaignID, ResearchDocsCount: len(docs)},
	}
}

func (f *fakeAnalyzer) RAGAvailability() engine.RAGAvailability {
	return engine.RAGAvailability{RAGAvailable: true}
}

func (f *fakeAnalyzer) Health() engine.HealthReport {
	return engine.HealthReport{Status: engine.StatusPartial, LoadBalancingAvailable: true}
}

func (f *fakeAnalyzer) LoadBalancingStats() map[string]provider.UsageStats {
	return map[string]provider.UsageStats{"groq": {Count: 3}}
}

// mockIntelligenceRepo 模拟情报仓库
type mockIntelligenceRepo struct {
	saved   []*model.IntelligenceRecord
	saveErr error
}

func (m *mockIntelligenceRepo) Save(_ context.Context, rec *model.IntelligenceRecord) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, rec)
	return "rec-1", nil
}

func (m *mockIntelligenceRepo) Get(_ context.Context, id string) (*storage.StoredIntelligence, error) {
	if id != "rec-1" || len(m.saved) == 0 {
		return nil, errors.NotFound("INTELLIGENCE_NOT_FOUND", "intelligence record not found")
	}
	return &storage.StoredIntelligence{ID: id, Record: m.saved[0]}, nil
}

func TestIntelligenceUseCase_AnalyzeDispatch(t *testing.T) {
	tests := []struct {
		name   string
		in     AnalyzeInput
		method string
	}{
		{"plain", AnalyzeInput{URL: "https://glucora.test"}, model.MethodPatternMatch},
		{"research", AnalyzeInput{URL: "https://glucora.test", ResearchDocs: []string{"notes"}}, model.MethodRAGEnhanced},
		{"enhanced", AnalyzeInput{URL: "https://glucora.test", Enhanced: true, CampaignID: "c1"}, model.MethodPatternMatch + model.EnhancedMethodSuffix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAnalyzer{}
			r := &mockIntelligenceRepo{}
			uc := NewIntelligenceUseCase(a, r, log.DefaultLogger)

			out, err := uc.Analyze(context.Background(), &tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.method, out.Intelligence.AnalysisMethod)
			assert.Equal(t, "rec-1", out.ID)
			assert.Len(t, r.saved, 1)
		})
	}
}

func TestIntelligenceUseCase_EnhancedOptions(t *testing.T) {
	a := &fakeAnalyzer{}
	uc := NewIntelligenceUseCase(a, nil, log.DefaultLogger)

	out, err := uc.Analyze(context.Background(), &AnalyzeInput{
		URL: "https://glucora.test", Enhanced: true, CampaignID: "c1", AnalysisDepth: "quick", SkipVSL: true,
		ResearchDocs: []string{"doc"},
	})
	require.NoError(t, err)
	assert.Empty(t, out.ID)
	assert.Equal(t, engine.EnhancedOptions{CampaignID: "c1", AnalysisDepth: "quick", SkipVSL: true, ResearchDocs: []string{"doc"}}, a.enhanced)
}

func TestIntelligenceUseCase_InvalidURL(t *testing.T) {
	uc := NewIntelligenceUseCase(&fakeAnalyzer{}, nil, log.DefaultLogger)
	for _, u := range []string{"", "glucora.test", "ftp://glucora.test", "https://"} {
		_, err := uc.Analyze(context.Background(), &AnalyzeInput{URL: u})
		assert.True(t, errors.IsBadRequest(err), u)
	}
}

func TestIntelligenceUseCase_SaveFailureStillReturnsRecord(t *testing.T) {
	uc := NewIntelligenceUseCase(&fakeAnalyzer{}, &mockIntelligenceRepo{saveErr: stderrors.New("db down")}, log.DefaultLogger)
	out, err := uc.Analyze(context.Background(), &AnalyzeInput{URL: "https://glucora.test"})
	require.NoError(t, err)
	assert.Empty(t, out.ID)
	assert.Equal(t, "Glucora", out.Intelligence.ProductName)
}

func TestIntelligenceUseCase_Get(t *testing.T) {
	r := &mockIntelligenceRepo{}
	uc := NewIntelligenceUseCase(&fakeAnalyzer{}, r, log.DefaultLogger)

	_, err := uc.Get(context.Background(), "rec-1")
	assert.True(t, errors.IsNotFound(err))

	_, err = uc.Analyze(context.Background(), &AnalyzeInput{URL: "https://glucora.test"})
	require.NoError(t, err)
	rec, err := uc.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Glucora", rec.ProductName)

	_, err = uc.Get(context.Background(), "")
	assert.True(t, errors.IsBadRequest(err))

	_, err = NewIntelligenceUseCase(&fakeAnalyzer{}, nil, log.DefaultLogger).Get(context.Background(), "rec-1")
	assert.True(t, errors.IsServiceUnavailable(err))
}

func TestIntelligenceUseCase_LoadBalancing(t *testing.T) {
	uc := NewIntelligenceUseCase(&fakeAnalyzer{}, nil, log.DefaultLogger)
	rep := uc.LoadBalancing()
	assert.True(t, rep.Enabled)
	assert.Equal(t, 3, rep.Stats["groq"].Count)
	assert.Equal(t, engine.StatusPartial, uc.Health().Status)
}

func TestIntelligenceUseCase_AnalyzeDocument(t *testing.T) {
	a := &fakeAnalyzer{}
	uc := NewIntelligenceUseCase(a, nil, log.DefaultLogger)

	out, err := uc.AnalyzeDocument(context.Background(), &DocumentInput{Content: "notes", ContextDocs: []string{"ctx"}})
	require.NoError(t, err)
	assert.Equal(t, "notes", out.ExtractedText)
	assert.Equal(t, model.MethodDocument+":txt", out.AnalysisMethod)
	assert.Equal(t, []string{"ctx"}, a.docs)

	out, err = uc.AnalyzeDocument(context.Background(), &DocumentInput{Content: "notes", FileExtension: "md"})
	require.NoError(t, err)
	assert.Equal(t, model.MethodDocument+":md", out.AnalysisMethod)

	_, err = uc.AnalyzeDocument(context.Background(), &DocumentInput{})
	assert.True(t, errors.IsBadRequest(err))
}

func TestIntelligenceUseCase_VSL(t *testing.T) {
	uc := NewIntelligenceUseCase(&fakeAnalyzer{}, nil, log.DefaultLogger)

	_, err := uc.DetectVSL(context.Background(), "https://glucora.test/watch")
	require.Error(t, err)
	assert.Equal(t, 502, errors.Code(err))

	_, err = uc.DetectVSL(context.Background(), "glucora.test")
	assert.True(t, errors.IsBadRequest(err))

	out, err := uc.AnalyzeVSL(context.Background(), &VSLInput{URL: "https://glucora.test/watch", CampaignID: "c1", ContextDocs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "c1", out.CampaignID)
	assert.Equal(t, 2, out.ResearchContextAvailable)

	_, err = uc.AnalyzeVSL(context.Background(), &VSLInput{URL: ""})
	assert.True(t, errors.IsBadRequest(err))
}

func TestIntelligenceUseCase_AnalyzeCompetitorSaves(t *testing.T) {
	r := &mockIntelligenceRepo{}
	uc := NewIntelligenceUseCase(&fakeAnalyzer{}, r, log.DefaultLogger)

	out, err := uc.AnalyzeCompetitor(context.Background(), &CompetitorInput{URL: "https://glucora.test", CampaignID: "c1", ResearchDocs: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "Glucora", out.ProductName)
	assert.Equal(t, 1, out.CompetitiveAnalysis.ResearchDocsCount)
	require.Len(t, r.saved, 1)
	assert.Same(t, out.IntelligenceRecord, r.saved[0])

	_, err = uc.AnalyzeCompetitor(context.Background(), &CompetitorInput{URL: "ftp://glucora.test"})
	assert.True(t, errors.IsBadRequest(err))
	assert.True(t, uc.RAGAvailability().RAGAvailable)
}
