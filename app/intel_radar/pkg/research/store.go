// Package research 为研究增强分析提供文档切块、检索与洞察生成
package research

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

const (
	DefaultChunkSize = 800
	DefaultTopK      = 5

	// MetaSource 文档来源，写入 schema.Document.MetaData
	MetaSource = "source"
	// MetaParent 切块所属的原始文档 id
	MetaParent = "parent_id"
)

// ErrEmptyQuery 查询语句中没有可用于匹配的词
var ErrEmptyQuery = errors.New("research: empty query")

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "to": true, "in": true,
	"for": true, "on": true, "is": true, "are": true, "with": true, "by": true, "or": true,
	"at": true, "it": true, "this": true, "that": true, "be": true, "as": true, "from": true,
}

type chunk struct {
	doc   *schema.Document
	terms map[string]int
}

// MemoryStore 进程内文档库，按词项重合度打分
type MemoryStore struct {
	chunkSize int

	mu     sync.RWMutex
	chunks []chunk
}

var (
	_ indexer.Indexer     = (*MemoryStore)(nil)
	_ retriever.Retriever = (*MemoryStore)(nil)
)

// NewMemoryStore chunkSize 为单块最大字符数
func NewMemoryStore(chunkSize int) *MemoryStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &MemoryStore{chunkSize: chunkSize}
}

// Store 切块并入库，返回每个原始文档的 id
// 不支持子索引与向量化，opts 被忽略
func (s *MemoryStore) Store(ctx context.Context, docs []*schema.Document, _ ...indexer.Option) ([]string, error) {
	ids := make([]string, 0, len(docs))
	var added []chunk
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d == nil {
			continue
		}
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids = append(ids, id)

		for i, text := range splitChunks(d.Content, s.chunkSize) {
			meta := make(map[string]any, len(d.MetaData)+1)
			for k, v := range d.MetaData {
				meta[k] = v
			}
			meta[MetaParent] = id
			added = append(added, chunk{
				doc: &schema.Document{
					ID:       id + "#" + strconv.Itoa(i),
					Content:  text,
					MetaData: meta,
				},
				terms: termFreq(text),
			})
		}
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, added...)
	s.mu.Unlock()
	return ids, nil
}

// Retrieve 返回与查询重合度最高的 TopK 个切块，分数写入 Document.Score
func (s *MemoryStore) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := DefaultTopK
	o := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	if o.TopK != nil && *o.TopK > 0 {
		topK = *o.TopK
	}
	threshold := 0.0
	if o.ScoreThreshold != nil {
		threshold = *o.ScoreThreshold
	}

	q := termFreq(query)
	if len(q) == 0 {
		return nil, ErrEmptyQuery
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type scored struct {
		idx   int
		score float64
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []scored
	for i, c := range s.chunks {
		matched := 0
		for t := range q {
			if c.terms[t] > 0 {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		score := float64(matched) / float64(len(q))
		if score < threshold {
			continue
		}
		hits = append(hits, scored{idx: i, score: score})
	}
	// 同分时保持入库顺序
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > topK {
		hits = hits[:topK]
	}

	out := make([]*schema.Document, 0, len(hits))
	for _, h := range hits {
		src := s.chunks[h.idx].doc
		d := &schema.Document{ID: src.ID, Content: src.Content, MetaData: make(map[string]any, len(src.MetaData)+1)}
		for k, v := range src.MetaData {
			d.MetaData[k] = v
		}
		out = append(out, d.WithScore(h.score))
	}
	return out, nil
}

// Len 当前切块数
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// splitChunks 按词切分，每块不超过 size 个字符；超长单词独占一块
func splitChunks(text string, size int) []string {
	words := strings.Fields(text)
	var (
		out []string
		sb  strings.Builder
	)
	for _, w := range words {
		if sb.Len() > 0 && sb.Len()+1+len(w) > size {
			out = append(out, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
	}
	if sb.Len() > 0 {
		out = append(out, sb.String())
	}
	return out
}

func termFreq(text string) map[string]int {
	tf := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) < 2 || stopWords[w] {
			continue
		}
		tf[w]++
	}
	return tf
}
