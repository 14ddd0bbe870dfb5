package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

// GenericProductName 无法识别产品名时返回的哨兵值
const GenericProductName = "Product"

// ProductExtractor 产品名识别
type ProductExtractor interface {
	Extract(content, title string) string
}

var titleStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "health": true, "natural": true, "best": true,
	"free": true, "join": true, "sign": true, "your": true, "how": true, "get": true, "now": true,
}

var falsePositives = map[string]bool{
	"your": true, "this": true, "that": true, "here": true, "there": true, "what": true,
	"when": true, "where": true, "mobile": true, "email": true, "phone": true, "number": true,
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:introducing|try|get|join)\s+([A-Z][a-zA-Z]{3,20})`),
	regexp.MustCompile(`(?i)([A-Z][a-zA-Z]{3,20})\s+(?:helps|supports|works|offers|provides)`),
	regexp.MustCompile(`(?i)([A-Z][a-zA-Z]{3,20})\s*[™®©]`),
	regexp.MustCompile(`(?i)welcome\s+to\s+([A-Z][a-zA-Z]{3,20})`),
	regexp.MustCompile(`(?i)([A-Z][a-zA-Z]{3,20})\s+(?:is|was|has)`),
	regexp.MustCompile(`(?i)(?:about|from)\s+([A-Z][a-zA-Z]{3,20})`),
	regexp.MustCompile(`(?i)([A-Z][a-zA-Z]{3,20})\s+(?:community|circle|program|system|course)`),
}

var capitalized = regexp.MustCompile(`\b[A-Z][a-zA-Z]{3,20}\b`)

// BasicExtractor 基于标题与正文模式的产品名识别
type BasicExtractor struct{}

// Extract 依次尝试标题、正文模式、高频大写词，都失败时返回 GenericProductName
func (BasicExtractor) Extract(content, title string) string {
	for _, word := range strings.Fields(title) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		r := []rune(word)
		if len(r) > 3 && unicode.IsUpper(r[0]) && !titleStopWords[strings.ToLower(word)] {
			logger.Log.Debugf("从标题识别产品名: %s", word)
			return word
		}
	}

	for _, re := range namePatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if !falsePositives[strings.ToLower(m[1])] {
				logger.Log.Debugf("从正文识别产品名: %s", m[1])
				return m[1]
			}
		}
	}

	// 出现多次的大写词，次数相同时取先出现的
	counts := make(map[string]int)
	var order []string
	for _, w := range capitalized.FindAllString(content, -1) {
		if falsePositives[strings.ToLower(w)] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	best := ""
	for _, w := range order {
		if counts[w] > counts[best] {
			best = w
		}
	}
	if best != "" && counts[best] > 1 {
		logger.Log.Debugf("按词频识别产品名: %s", best)
		return best
	}

	return GenericProductName
}

// FromURL 取二级域名并首字母大写，例如 https://www.glucora.com/x 得到 Glucora
func FromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(u.Hostname(), "www."), ".")
	if len(parts) < 2 {
		return ""
	}
	name := parts[len(parts)-2]
	if len([]rune(name)) < 3 {
		return ""
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
