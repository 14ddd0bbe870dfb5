package prompt

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// 控制 token 成本的截断长度
const (
	MaxContentChars = 1500
	MaxTriggers     = 5
	MaxPricing      = 3
)

// SystemMessage 所有低价档位调用共用的系统提示
const SystemMessage = "You are an expert competitive intelligence analyst. Extract actionable insights for marketing campaigns. " +
	"Provide specific, detailed analysis in each category. " +
	"Always use the actual product name provided, never generic terms like 'Your' or 'Product'."

// ExpensiveSystemMessage 昂贵档位的系统提示，直接写入产品名
func ExpensiveSystemMessage(productName string) string {
	return fmt.Sprintf("You are an expert competitive intelligence analyst. Extract actionable insights for marketing campaigns. "+
		"Always use the actual product name '%s' provided, never generic terms like 'Your' or 'Product'. "+
		"Provide specific, detailed analysis in each category.", productName)
}

// analysisTpl 中 %[1]s 为产品名，模型在缺少反复强调时会退回到通用占位词
const analysisTpl = `Analyze this sales page for the specific product "%[1]s":

CRITICAL INSTRUCTIONS:
- The product name is "%[1]s" - use this EXACT name in all analysis
- DO NOT use generic terms like "Your", "Product", "Your Product", or "the product"
- Replace any generic references with the actual product name "%[1]s"
- When extracting products list, use ["%[1]s"] and never a generic word

ANALYSIS TARGET:
URL: %[2]s
Product Name: %[1]s
Page Title: %[3]s
Content: %[4]s
Emotional Triggers: %[5]s
Pricing: %[6]s

Extract competitive intelligence using the ACTUAL product name "%[1]s":

1. OFFER INTELLIGENCE:
- Main offering: use "%[1]s" as the name
- Pricing strategy for %[1]s
- Key benefits claimed for %[1]s
- Guarantees offered for %[1]s

2. PSYCHOLOGY INTELLIGENCE:
- Emotional triggers used to sell %[1]s
- Target audience for %[1]s
- Pain points %[1]s addresses
- Persuasion techniques for %[1]s

3. COMPETITIVE INTELLIGENCE:
- Market positioning of %[1]s
- Competitive advantages of %[1]s
- Potential weaknesses of %[1]s
- Opportunities for competing with %[1]s

4. CONTENT INTELLIGENCE:
- Key messages about %[1]s
- Success stories related to %[1]s
- Social proof elements for %[1]s
- Call-to-action strategy for %[1]s

IMPORTANT: In your response, always use "%[1]s" as the actual name.
Never use "Your", "Product", "Your Product", "the product" or any generic stand-in.

Respond with bullet points ("- ") under each heading, using "%[1]s" throughout.`

// Build 渲染分析提示词，纯函数
func Build(content *model.StructuredContent, url, productName string) string {
	if content == nil {
		content = &model.StructuredContent{}
	}

	triggers := content.EmotionalTriggers
	if len(triggers) > MaxTriggers {
		triggers = triggers[:MaxTriggers]
	}
	names := make([]string, 0, len(triggers))
	for _, t := range triggers {
		names = append(names, t.Trigger)
	}

	pricing := content.PricingMentions
	if len(pricing) > MaxPricing {
		pricing = pricing[:MaxPricing]
	}

	return fmt.Sprintf(analysisTpl,
		productName,
		url,
		content.Title,
		model.Truncate(content.Content, MaxContentChars),
		listing(names),
		listing(pricing),
	)
}

func listing(items []string) string {
	if len(items) == 0 {
		return "none found"
	}
	return strings.Join(items, "; ")
}
