package extract

import (
	"regexp"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

const (
	maxPricePerPattern = 10
	maxTriggers        = 15
	maxSectionChars    = 500
	triggerContext     = 50
)

var pricePatterns = compileAll(
	`\$[\d,]+(?:\.\d{2})?`,
	`£[\d,]+(?:\.\d{2})?`,
	`€[\d,]+(?:\.\d{2})?`,
	`[\d,]+\s*dollars?`,
	`free(?:\s+trial)?`,
	`money\s*back\s*guarantee`,
	`buy\s+\d+\s+get\s+\d+\s+free`,
	`\d+%\s+(?:off|discount)`,
	`save\s+\$[\d,]+`,
	`was\s+\$[\d,]+\s+now\s+\$[\d,]+`,
)

// TriggerWords 销售页常见的情绪触发词
var TriggerWords = []string{
	"limited time", "exclusive", "secret", "breakthrough", "guaranteed",
	"proven", "instant", "fast", "easy", "simple", "powerful",
	"revolutionary", "amazing", "incredible", "shocking", "urgent",
	"clinically tested", "doctor recommended", "scientifically proven",
	"natural", "safe", "effective", "trusted", "recommended",
}

var triggerPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(TriggerWords))
	for i, w := range TriggerWords {
		out[i] = regexp.MustCompile(`(?i).{0,50}` + regexp.QuoteMeta(w) + `.{0,50}`)
	}
	return out
}()

// sectionPatterns 按顺序匹配，取第一个分组
var sectionPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"headline", regexp.MustCompile(`(?is)(.{0,200}?)(?:\n|\.|!|\?)`)},
	{"benefits", regexp.MustCompile(`(?is)(benefits?.*?)(?:features?|price|order|buy)`)},
	{"features", regexp.MustCompile(`(?is)(features?.*?)(?:benefits?|price|order|buy)`)},
	{"testimonials", regexp.MustCompile(`(?is)(testimonial.*?)(?:price|order|buy|feature)`)},
	{"guarantee", regexp.MustCompile(`(?is)(guarantee.*?)(?:price|order|buy|feature)`)},
	{"urgency", regexp.MustCompile(`(?is)(limited.*?time|urgent.*?|hurry.*?|act.*?now)`)},
	{"call_to_action", regexp.MustCompile(`(?is)(buy\s+now|order\s+now|get\s+started|sign\s+up|click\s+here)`)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// Structure 从抓取到的页面中提取价格、情绪触发词、字数与段落
func Structure(page *model.PageContent) *model.StructuredContent {
	if page == nil {
		page = &model.PageContent{}
	}
	content := page.Content

	return &model.StructuredContent{
		Title:             page.Title,
		Content:           content,
		URL:               page.URL,
		PricingMentions:   PricingMentions(content),
		EmotionalTriggers: EmotionalTriggers(content),
		WordCount:         len(strings.Fields(content)),
		ContentSections:   Sections(content),
	}
}

// PricingMentions 每个模式最多取 10 个
func PricingMentions(content string) []string {
	prices := []string{}
	for _, re := range pricePatterns {
		prices = append(prices, re.FindAllString(content, maxPricePerPattern)...)
	}
	return prices
}

// EmotionalTriggers 返回命中的触发词及其前后各 50 字符的上下文，最多 15 个
func EmotionalTriggers(content string) []model.EmotionalTrigger {
	triggers := []model.EmotionalTrigger{}
	lower := strings.ToLower(content)
	for i, w := range TriggerWords {
		if !strings.Contains(lower, w) {
			continue
		}
		m := triggerPatterns[i].FindString(content)
		if m == "" {
			continue
		}
		triggers = append(triggers, model.EmotionalTrigger{Trigger: w, Context: strings.TrimSpace(m)})
		if len(triggers) == maxTriggers {
			break
		}
	}
	return triggers
}

// Sections 识别标题、卖点、功能、评价、保证、紧迫感与行动号召段落
func Sections(content string) map[string]string {
	sections := make(map[string]string)
	lower := strings.ToLower(content)
	for _, p := range sectionPatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		sections[p.name] = model.Truncate(strings.TrimSpace(m[1]), maxSectionChars)
	}
	return sections
}
