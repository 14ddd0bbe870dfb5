package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// ErrScrapeFailed 网络层失败，非 200 状态不算失败
var ErrScrapeFailed = errors.New("scrape failed")

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	noTitle      = "No title found"
	maxBodyBytes = 10 << 20
)

// Fetcher 页面抓取
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.PageContent, error)
}

// Scraper 基于 net/http + goquery 的抓取实现
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New 创建抓取器，timeout 为整次请求的上限
func New(timeout time.Duration, userAgent string) *Scraper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch 抓取页面并提取标题与纯文本
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*model.PageContent, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrScrapeFailed, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Errorf("抓取页面失败 [%s]: %v", pageURL, err)
		return nil, fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 继续使用返回的内容
		logger.Log.Warnf("HTTP %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrScrapeFailed, err)
	}
	logger.Log.Infof("抓取 %s 完成，共 %d 字节", pageURL, len(body))

	page := Parse(body, parsed)
	page.URL = pageURL
	return page, nil
}

// Parse 从 HTML 中提取标题与正文，goquery 得不到正文时退回 readability
func Parse(html []byte, pageURL *url.URL) *model.PageContent {
	page := &model.PageContent{Title: noTitle, HTML: string(html)}
	if pageURL != nil {
		page.URL = pageURL.String()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err == nil {
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			page.Title = title
		}
		doc.Find("script, style, nav, footer").Remove()
		page.Content = cleanText(doc.Find("body").Text())
	}

	if page.Content == "" && pageURL != nil && len(bytes.TrimSpace(html)) > 0 {
		article, err := readability.FromReader(bytes.NewReader(html), pageURL)
		if err == nil {
			page.Content = cleanText(article.TextContent)
			if page.Title == noTitle && strings.TrimSpace(article.Title) != "" {
				page.Title = strings.TrimSpace(article.Title)
			}
		}
	}
	return page
}

// cleanText 去掉每行首尾空白，按双空格切分短语后用单空格连接
func cleanText(text string) string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, " ")
}
