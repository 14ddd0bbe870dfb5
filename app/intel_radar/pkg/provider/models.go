package provider

// DefaultModel 未知提供商使用的模型
const DefaultModel = "gpt-3.5-turbo"

var modelTable = map[string]string{
	"groq":      "llama-3.3-70b-versatile",
	"together":  "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
	"deepseek":  "deepseek-chat",
	"anthropic": "claude-3-haiku-20240307",
	"cohere":    "command-r-plus",
	"openai":    "gpt-3.5-turbo",
}

// ModelFor 按提供商名称查模型名
func ModelFor(name string) string {
	if m, ok := modelTable[name]; ok {
		return m
	}
	return DefaultModel
}

// modelOf 配置里显式指定的模型优先
func modelOf(d Descriptor) string {
	if d.Model != "" {
		return d.Model
	}
	return ModelFor(d.Name)
}
