package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/provider"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/research"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/scraper"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
)

const glucoraURL = "https://www.glucora.test/offer"

func glucoraPage() *model.PageContent {
	return &model.PageContent{
		Title:   "Glucora Official",
		Content: "Try Glucora today! $49.99 limited time",
		URL:     glucoraURL,
	}
}

// fakeFetcher 按 URL 返回页面，未登记的 URL 视为网络失败
type fakeFetcher struct {
	pages  map[string]*model.PageContent
	panics bool
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (*model.PageContent, error) {
	if f.panics {
		panic("fetcher exploded")
	}
	if p, ok := f.pages[pageURL]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: connection refused", scraper.ErrScrapeFailed)
}

func glucoraFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]*model.PageContent{glucoraURL: glucoraPage()}}
}

// nopHandle 只用于占位，调用由 fakeCaller 接管
type nopHandle struct{}

func (nopHandle) Generate(context.Context, []*schema.Message, ...einomodel.Option) (*schema.Message, error) {
	return schema.AssistantMessage("", nil), nil
}

type callRecord struct {
	modelID   string
	msgs      []*schema.Message
	maxTokens int
}

// fakeCaller 返回固定回复并记录调用
type fakeCaller struct {
	mu    sync.Mutex
	reply provider.Reply
	err   error
	calls []callRecord
}

func (f *fakeCaller) Call(_ context.Context, _ provider.Handle, modelID string, msgs []*schema.Message, _ float32, maxTokens int) (provider.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, callRecord{modelID: modelID, msgs: msgs, maxTokens: maxTokens})
	return f.reply, f.err
}

func (f *fakeCaller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// panicUsage Stats 时 panic，用于验证档位内 panic 会降级
type panicUsage struct {
	*provider.UsageTracker
}

func (panicUsage) Stats() map[string]provider.UsageStats { panic("stats unavailable") }

// failingResearch AddDocument 总是失败
type failingResearch struct{}

func (failingResearch) AddDocument(context.Context, string, string, map[string]any) error {
	return errors.New("index offline")
}

func (failingResearch) Query(context.Context, string, int) ([]*schema.Document, error) {
	return nil, nil
}

func (failingResearch) Generate(context.Context, string, []*schema.Document) (*research.Insight, error) {
	return nil, research.ErrNoChunks
}

// fakeSearcher 返回固定结果
type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	f.queries = append(f.queries, req.Query)
	if f.err != nil {
		return nil, f.err
	}
	return &search.Response{Results: f.results}, nil
}

func catalogOf(names ...string) provider.Catalog {
	c := make(provider.Catalog, 0, len(names))
	for i, n := range names {
		c = append(c, provider.Descriptor{
			Name:         n,
			Available:    true,
			Handle:       nopHandle{},
			Priority:     i + 1,
			CostPer1K:    0.0002,
			QualityScore: 0.8,
			Tier:         provider.TierFree,
		})
	}
	return c
}

const sectionedReply = "1. OFFER INTELLIGENCE:\n- Your is amazing\n- Buy Product now\n" +
	"2. COMPETITIVE INTELLIGENCE:\n* Undercut the product on price"

var placeholderWord = regexp.MustCompile(`(?i)\b(your|product|company name)\b`)

var identityKeys = map[string]bool{"source_url": true, "product_name": true, "analysis_method": true}

// assertNoPlaceholders 遍历记录的 JSON 形式，除标识字段外不应出现占位词
func assertNoPlaceholders(t *testing.T, rec *model.IntelligenceRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var tree any
	require.NoError(t, json.Unmarshal(data, &tree))

	var walk func(key string, v any)
	walk = func(key string, v any) {
		switch x := v.(type) {
		case map[string]any:
			for k, c := range x {
				walk(k, c)
			}
		case []any:
			for _, c := range x {
				walk(key, c)
			}
		case string:
			if !identityKeys[key] {
				require.Falsef(t, placeholderWord.MatchString(x), "placeholder left in %s: %q", key, x)
			}
		}
	}
	walk("", tree)
}
