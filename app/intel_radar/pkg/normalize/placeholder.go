package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// placeholders 模型常用来代替真实产品名的通用词，长的在前
var placeholders = []string{
	"[Product Name]",
	"[Your Company]",
	"[Company Name]",
	"Your Product",
	"Your Company",
	"this product",
	"the product",
	"Product",
	"Your",
}

// Placeholders 返回占位词列表的副本
func Placeholders() []string {
	out := make([]string, len(placeholders))
	copy(out, placeholders)
	return out
}

// Substituter 把占位词替换为真实产品名
//
// 所有占位词合并为一个大小写不敏感的正则，产品名本身作为第一个分支，
// 命中时原样保留，所以对已替换过的文本再次执行不会产生变化。
type Substituter struct {
	name string
	re   *regexp.Regexp
}

// NewSubstituter 为指定产品名构建替换器，产品名为空时不做任何替换
func NewSubstituter(productName string) *Substituter {
	s := &Substituter{name: strings.TrimSpace(productName)}
	if s.name == "" {
		return s
	}

	alts := make([]string, 0, len(placeholders)+1)
	alts = append(alts, bounded(s.name))
	for _, p := range placeholders {
		alts = append(alts, bounded(p))
	}
	s.re = regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	return s
}

// Name 返回替换目标产品名
func (s *Substituter) Name() string {
	return s.name
}

// Apply 对一段文本执行替换
func (s *Substituter) Apply(text string) string {
	if s.re == nil || text == "" {
		return text
	}
	return s.re.ReplaceAllStringFunc(text, func(m string) string {
		if strings.EqualFold(m, s.name) {
			return m
		}
		return s.name
	})
}

// bounded 只在词首/词尾为单词字符的一侧加 \b，"[Product Name]" 这类以括号开头的词不能加
func bounded(token string) string {
	q := regexp.QuoteMeta(token)
	r := []rune(token)
	if isWordRune(r[0]) {
		q = `\b` + q
	}
	if isWordRune(r[len(r)-1]) {
		q += `\b`
	}
	return q
}

func isWordRune(r rune) bool {
	return r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
