package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/normalize"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/research"
)

func TestAnalyzeEnhanced(t *testing.T) {
	e := New(Options{Fetcher: glucoraFetcher(), Usage: provider.NewUsageTracker()})

	rec := e.AnalyzeEnhanced(context.Background(), glucoraURL, EnhancedOptions{CampaignID: "cmp-1"})

	assert.True(t, strings.HasPrefix(rec.IntelligenceID, "intel_"))
	assert.Len(t, rec.IntelligenceID, len("intel_")+8)
	assert.Equal(t, DefaultAnalysisDepth, rec.AnalysisDepth)
	assert.Equal(t, "cmp-1", rec.CampaignID)
	assert.Equal(t, model.MethodPatternMatch+model.EnhancedMethodSuffix, rec.AnalysisMethod)
	assert.Equal(t, PatternConfidence, rec.ConfidenceScore)

	require.NotNil(t, rec.CampaignAngles)
	assert.Equal(t, "Strategic competitive advantage through Glucora intelligence", rec.CampaignAngles.PrimaryAngle)
	require.NotNil(t, rec.ActionableInsights)
	assert.Len(t, rec.ActionableInsights.TestingRecommendations, 3)
	require.NotNil(t, rec.TechnicalAnalysis)
	assert.True(t, rec.TechnicalAnalysis.MobileOptimization)

	require.NotNil(t, rec.VSLAnalysis)
	assert.False(t, rec.VSLAnalysis.HasVideo)
	assert.Equal(t, []string{"No Glucora video content found"}, rec.VSLAnalysis.KeyVideoElements)
	assertNoPlaceholders(t, rec)
}

func TestAnalyzeEnhanced_SkipVSLAndDepth(t *testing.T) {
	e := New(Options{Fetcher: glucoraFetcher(), Usage: provider.NewUsageTracker()})

	rec := e.AnalyzeEnhanced(context.Background(), glucoraURL, EnhancedOptions{AnalysisDepth: "quick", SkipVSL: true})

	assert.Equal(t, "quick", rec.AnalysisDepth)
	assert.Nil(t, rec.VSLAnalysis)
}

func TestAnalyzeEnhanced_WithResearchCapsConfidence(t *testing.T) {
	e := New(Options{Fetcher: glucoraFetcher(), Usage: provider.NewUsageTracker(), Research: research.NewRAGFactory(200)})

	rec := e.AnalyzeEnhanced(context.Background(), glucoraURL, EnhancedOptions{ResearchDocs: pricingDocs})

	assert.True(t, rec.ResearchEnhanced)
	assert.Equal(t, model.MethodRAGEnhanced+model.EnhancedMethodSuffix, rec.AnalysisMethod)
	assert.InDelta(t, normalize.MaxResearchConfidence, rec.ConfidenceScore, 1e-9)
}

func TestDetectVideo(t *testing.T) {
	v := detectVideo("Watch the full presentation", "Glucora")
	assert.True(t, v.HasVideo)
	assert.Equal(t, []string{"Glucora video content detected"}, v.KeyVideoElements)
}
