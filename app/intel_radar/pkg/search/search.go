// Package search 定义研究增强分析使用的网页搜索接口
package search

import "context"

// Searcher 通用搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query             string
	Topic             string // "news" 或 "general"
	MaxResults        int
	IncludeRawContent bool
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title         string
	URL           string
	Content       string
	RawContent    string
	Score         float64
	PublishedDate string
}

// Text 返回可用于研究文档的正文，优先原文
func (r Result) Text() string {
	if r.RawContent != "" {
		return r.RawContent
	}
	return r.Content
}

// CompetitorQuery 竞品调研使用的查询语句
func CompetitorQuery(productName string) string {
	return productName + " reviews pricing competitors alternatives"
}
