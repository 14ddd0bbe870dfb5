package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// ErrNoChunks Generate 没有可用切块
var ErrNoChunks = errors.New("research: no chunks to generate from")

const maxInsightChars = 200

// System 研究文档检索与洞察生成
type System interface {
	AddDocument(ctx context.Context, id, content string, meta map[string]any) error
	Query(ctx context.Context, text string, topK int) ([]*schema.Document, error)
	Generate(ctx context.Context, text string, chunks []*schema.Document) (*Insight, error)
}

// Insight 研究增强结果
type Insight struct {
	ConfidenceScore float64  `json:"confidence_score"`
	Insights        []string `json:"insights"`
	Sources         []string `json:"sources"`
	Query           string   `json:"query"`
}

// Map 转为 IntelligenceRecord.EnhancedIntelligence 使用的形式
func (i *Insight) Map() map[string]any {
	insights := make([]any, len(i.Insights))
	for k, v := range i.Insights {
		insights[k] = v
	}
	sources := make([]any, len(i.Sources))
	for k, v := range i.Sources {
		sources[k] = v
	}
	return map[string]any{
		"confidence_score": i.ConfidenceScore,
		"insights":         insights,
		"sources":          sources,
		"query":            i.Query,
	}
}

// Factory 为每次分析请求创建独立的 System，文档不会在请求之间共享
type Factory func() System

// NewRAGFactory 每次调用返回一个新的进程内 RAG
func NewRAGFactory(chunkSize int) Factory {
	return func() System { return NewRAG(chunkSize) }
}

// RAG 基于 eino Indexer/Retriever 的 System 实现
type RAG struct {
	idx indexer.Indexer
	ret retriever.Retriever
}

var _ System = (*RAG)(nil)

// NewRAG 使用进程内 MemoryStore
func NewRAG(chunkSize int) *RAG {
	s := NewMemoryStore(chunkSize)
	return &RAG{idx: s, ret: s}
}

// NewRAGWith 接入其他 eino 组件，如向量库
func NewRAGWith(idx indexer.Indexer, ret retriever.Retriever) *RAG {
	return &RAG{idx: idx, ret: ret}
}

func (r *RAG) AddDocument(ctx context.Context, id, content string, meta map[string]any) error {
	_, err := r.idx.Store(ctx, []*schema.Document{{ID: id, Content: content, MetaData: meta}})
	if err != nil {
		return fmt.Errorf("store document %s: %w", id, err)
	}
	return nil
}

func (r *RAG) Query(ctx context.Context, text string, topK int) ([]*schema.Document, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return r.ret.Retrieve(ctx, text, retriever.WithTopK(topK))
}

// Generate 汇总切块：置信度取平均分，每块取首句作为洞察
func (r *RAG) Generate(ctx context.Context, text string, chunks []*schema.Document) (*Insight, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Insight{Query: text, Insights: []string{}, Sources: []string{}}
	seenInsight := make(map[string]bool)
	seenSource := make(map[string]bool)
	var total float64
	for _, c := range chunks {
		total += c.Score()

		if s := firstSentence(c.Content); s != "" && !seenInsight[s] {
			seenInsight[s] = true
			out.Insights = append(out.Insights, s)
		}

		src, _ := c.MetaData[MetaSource].(string)
		if src == "" {
			src, _ = c.MetaData[MetaParent].(string)
		}
		if src != "" && !seenSource[src] {
			seenSource[src] = true
			out.Sources = append(out.Sources, src)
		}
	}

	conf := total / float64(len(chunks))
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	out.ConfidenceScore = conf
	return out, nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		text = text[:i+1]
	}
	return model.Truncate(text, maxInsightChars)
}
