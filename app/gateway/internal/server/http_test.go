package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/conf"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/data"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/service"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/usecase"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/clickbank"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, u string) *model.IntelligenceRecord {
	return &model.IntelligenceRecord{SourceURL: u, ProductName: "Glucora", AnalysisMethod: model.MethodPatternMatch, ConfidenceScore: 0.6}
}

func (s stubAnalyzer) AnalyzeWithResearchContext(ctx context.Context, u string, _ []string) *model.IntelligenceRecord {
	return s.Analyze(ctx, u)
}

func (s stubAnalyzer) AnalyzeEnhanced(ctx context.Context, u string, _ engine.EnhancedOptions) *model.IntelligenceRecord {
	return s.Analyze(ctx, u)
}

func (stubAnalyzer) AnalyzeDocument(_ context.Context, content []byte, _ string, _ []string) *engine.DocumentIntelligence {
	return &engine.DocumentIntelligence{ExtractedText: string(content), AnalysisMethod: model.MethodDocument, ConfidenceScore: engine.DocumentConfidence}
}

func (stubAnalyzer) DetectVSL(_ context.Context, u string) (*engine.VSLDetection, error) {
	if strings.Contains(u, "down") {
		return nil, stderrors.New("connection refused")
	}
	return &engine.VSLDetection{VSLAnalysis: &model.VSLAnalysis{HasVideo: true}, ProductName: "Glucora"}, nil
}

func (stubAnalyzer) AnalyzeVSL(_ context.Context, u string, opts engine.VSLOptions) *engine.VSLTranscript {
	return &engine.VSLTranscript{TranscriptID: "vsl_12345678", VideoURL: u, CampaignID: opts.CampaignID}
}

func (s stubAnalyzer) AnalyzeCompetitor(ctx context.Context, u, campaignID string, docs []string) *engine.CompetitorReport {
	return &engine.CompetitorReport{
		IntelligenceRecord:  s.Analyze(ctx, u),
		CompetitiveAnalysis: engine.CompetitiveMeta{AnalyzerType: "CompetitiveAnalyzer", CampaignID: campaignID, ResearchDocsCount: len(docs)},
	}
}

func (stubAnalyzer) RAGAvailability() engine.RAGAvailability {
	return engine.RAGAvailability{Capabilities: map[string]bool{"semantic_search": false}}
}

func (stubAnalyzer) Health() engine.HealthReport {
	return engine.HealthReport{Status: engine.StatusPartial, ActiveTier: model.MethodPatternMatch, PatternFallback: true}
}

func (stubAnalyzer) LoadBalancingStats() map[string]provider.UsageStats {
	return map[string]provider.UsageStats{}
}

type testEnv struct {
	srv  nethttp.Handler
	auth *usecase.AuthUseCase
}

func newTestEnv(t *testing.T, jwtKey string, clickbankURL string) *testEnv {
	t.Helper()
	logger := log.DefaultLogger

	d, cleanup, err := data.NewData(&conf.Data{Database: &conf.Database{Driver: "sqlite3", Source: ":memory:"}}, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	auth := usecase.NewAuthUseCase(&conf.Auth{JwtKey: jwtKey})
	intel := service.NewIntelligenceService(
		usecase.NewIntelligenceUseCase(stubAnalyzer{}, data.NewIntelligenceRepo(d, logger), logger), logger)
	sales := clickbank.NewService(d.Store(), config.ClickBankConfig{BaseURL: clickbankURL, DevKey: "DEV"}, nil)
	cb := service.NewClickBankService(usecase.NewClickBankUseCase(sales, logger), auth, logger)

	return &testEnv{srv: NewHTTPServer(&conf.Server{}, auth, intel, cb, logger), auth: auth}
}

func (e *testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestIntelligenceRoutes(t *testing.T) {
	env := newTestEnv(t, "", "http://unused")

	rec := env.do(t, nethttp.MethodPost, "/api/intelligence/analyze", `{"url":"https://glucora.test/offer"}`, "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Glucora", out["intelligence"].(map[string]any)["product_name"])

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/"+id, "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://glucora.test/offer", decode(t, rec)["source_url"])

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/does-not-exist", "", "")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/health", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, engine.StatusPartial, decode(t, rec)["status"])

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/load-balancing", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "provider_stats")

	rec = env.do(t, nethttp.MethodPost, "/api/intelligence/analyze", `{"url":"not a url"}`, "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestAnalyzerRoutes(t *testing.T) {
	env := newTestEnv(t, "", "http://unused")

	rec := env.do(t, nethttp.MethodPost, "/api/intelligence/document", `{"content":"market notes","context_docs":["a"]}`, "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "market notes", out["extracted_text"])
	assert.Equal(t, model.MethodDocument, out["analysis_method"])

	rec = env.do(t, nethttp.MethodPost, "/api/intelligence/document", `{"content":""}`, "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/vsl/detect?url=https://glucora.test/watch", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	out = decode(t, rec)
	assert.Equal(t, true, out["has_video"])
	assert.Equal(t, "Glucora", out["product_name"])

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/vsl/detect?url=https://down.test", "", "")
	assert.Equal(t, nethttp.StatusBadGateway, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/api/intelligence/vsl", `{"url":"https://glucora.test/watch","campaign_id":"c1"}`, "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	out = decode(t, rec)
	assert.Equal(t, "vsl_12345678", out["transcript_id"])
	assert.Equal(t, "c1", out["campaign_id"])

	rec = env.do(t, nethttp.MethodPost, "/api/intelligence/competitor", `{"url":"https://glucora.test/offer","campaign_id":"c1","research_docs":["x","y"]}`, "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	out = decode(t, rec)
	assert.Equal(t, "Glucora", out["product_name"])
	meta := out["competitive_analysis"].(map[string]any)
	assert.Equal(t, "CompetitiveAnalyzer", meta["analyzer_type"])
	assert.EqualValues(t, 2, meta["research_docs_count"])

	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/rag-availability", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decode(t, rec)["rag_available"])
}

func TestClickBankRoutes_NoAuth(t *testing.T) {
	upstream := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "vendor", r.URL.Query().Get("accountId"))
		assert.Equal(t, "DEV:CLERK", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"totalSales":5}`))
	}))
	defer upstream.Close()
	env := newTestEnv(t, "", upstream.URL)

	rec := env.do(t, nethttp.MethodGet, "/clickbank/sales?user_id=7", "", "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = env.do(t, nethttp.MethodPost, "/clickbank/connect", `{"user_id":"7","nickname":"vendor","clerk_key":"CLERK"}`, "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ClickBank account connected.", decode(t, rec)["message"])

	rec = env.do(t, nethttp.MethodGet, "/clickbank/sales?user_id=7&days=7", "", "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 5, decode(t, rec)["totalSales"])

	rec = env.do(t, nethttp.MethodGet, "/clickbank/sales?user_id=7&days=abc", "", "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestClickBankRoutes_JWT(t *testing.T) {
	env := newTestEnv(t, "secret", "http://unused")

	body := `{"user_id":"spoofed","nickname":"vendor","clerk_key":"CLERK"}`
	rec := env.do(t, nethttp.MethodPost, "/clickbank/connect", body, "")
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	token, err := env.auth.Issue("42", time.Hour)
	require.NoError(t, err)
	rec = env.do(t, nethttp.MethodPost, "/clickbank/connect", body, token)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	// 分析接口不需要 token
	rec = env.do(t, nethttp.MethodGet, "/api/intelligence/health", "", "")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, "", "http://unused")
	rec := env.do(t, nethttp.MethodGet, "/metrics", "", "")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}
