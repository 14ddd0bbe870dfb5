package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/prompt"
)

// ErrProviderCallFailed 调用失败，只在 Invoker 内部出现，对外转为错误文本
var ErrProviderCallFailed = errors.New("provider call failed")

// 低价档位调用参数
const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = float32(0.3)
)

// Invoker 调用选中的提供商，所有失败都被吸收为 JSON 错误文本
type Invoker struct {
	caller Caller
	usage  UsageState
	now    func() time.Time
}

// NewInvoker usage 可为空
func NewInvoker(caller Caller, usage UsageState) *Invoker {
	return &Invoker{caller: caller, usage: usage, now: time.Now}
}

// Invoke 返回模型回复文本，从不返回错误
func (iv *Invoker) Invoke(ctx context.Context, d Descriptor, promptText string, maxTokens int, temperature float32) string {
	text, err := iv.invoke(ctx, d, promptText, maxTokens, temperature)
	if err == nil {
		return text
	}

	logger.Log.Errorf("AI request failed for %s: %v", d.Name, err)
	metrics.ProviderErrors.WithLabelValues(d.Name).Inc()
	if iv.usage != nil {
		iv.usage.RecordError(d.Name)
	}
	return iv.errorPayload(map[string]any{
		"error":         "AI request failed",
		"error_message": err.Error(),
		"provider":      d.Name,
		"fallback":      true,
	})
}

func (iv *Invoker) invoke(ctx context.Context, d Descriptor, promptText string, maxTokens int, temperature float32) (text string, err error) {
	// 第三方句柄的 panic 也在这里吸收
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrProviderCallFailed, r)
		}
	}()

	if d.Handle == nil {
		return "", fmt.Errorf("%w: no client available for provider %s", ErrProviderCallFailed, d.Name)
	}
	if iv.caller == nil {
		return "", fmt.Errorf("%w: no caller configured", ErrProviderCallFailed)
	}

	msgs := []*schema.Message{
		schema.SystemMessage(prompt.SystemMessage),
		schema.UserMessage(promptText),
	}
	reply, err := iv.caller.Call(ctx, d.Handle, modelOf(d), msgs, temperature, maxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderCallFailed, err)
	}
	return iv.replyText(d.Name, reply), nil
}

// replyText 把各种回复形态统一为文本
func (iv *Invoker) replyText(name string, reply Reply) string {
	switch r := reply.(type) {
	case TextReply:
		return string(r)
	case PayloadReply:
		if fallback, _ := r["fallback"].(bool); fallback {
			data, ok := r["fallback_data"]
			if !ok || data == nil {
				data = map[string]any{}
			}
			return iv.marshal(data)
		}
		return iv.marshal(map[string]any(r))
	default:
		logger.Log.Errorf("Unexpected response format for %s: %T", name, reply)
		return iv.errorPayload(map[string]any{
			"error":         "Unexpected response format",
			"response_type": fmt.Sprintf("%T", reply),
			"provider":      name,
		})
	}
}

func (iv *Invoker) errorPayload(fields map[string]any) string {
	fields["timestamp"] = iv.now().UTC().Format(time.RFC3339)
	return iv.marshal(fields)
}

func (iv *Invoker) marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// 不可编码的值退化为字符串表示
		data, _ = json.Marshal(map[string]any{"error": "unserializable response", "value": fmt.Sprint(v)})
	}
	return string(data)
}
