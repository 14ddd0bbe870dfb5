package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// AnthropicHandle 把 Anthropic Messages API 适配为 Handle
type AnthropicHandle struct {
	client anthropic.Client
	model  string
}

// AnthropicConfig Anthropic 句柄配置
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewAnthropicHandle 创建句柄
func NewAnthropicHandle(cfg AnthropicConfig) *AnthropicHandle {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.Model == "" {
		cfg.Model = ModelFor("anthropic")
	}
	return &AnthropicHandle{client: anthropic.NewClient(opts...), model: cfg.Model}
}

// Generate 实现 Handle
func (h *AnthropicHandle) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	maxTokens := DefaultMaxTokens
	modelName := h.model
	o := model.GetCommonOptions(&model.Options{MaxTokens: &maxTokens, Model: &modelName}, opts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(*o.Model),
		MaxTokens: int64(*o.MaxTokens),
	}
	if o.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*o.Temperature))
	}

	for _, m := range input {
		switch m.Role {
		case schema.System:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case schema.Assistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if len(params.Messages) == 0 {
		return nil, errors.New("anthropic: no user message")
	}

	resp, err := h.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return schema.AssistantMessage(sb.String(), nil), nil
}
