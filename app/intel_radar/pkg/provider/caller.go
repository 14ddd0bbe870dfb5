package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

// Reply 调用结果：TextReply 或 PayloadReply
type Reply interface {
	isReply()
}

// TextReply 纯文本回复
type TextReply string

// PayloadReply 结构化回复，带 "fallback": true 时 "fallback_data" 为降级内容
type PayloadReply map[string]any

func (TextReply) isReply()    {}
func (PayloadReply) isReply() {}

// Caller 限流调用协作方
type Caller interface {
	Call(ctx context.Context, h Handle, modelID string, msgs []*schema.Message, temperature float32, maxTokens int) (Reply, error)
}

// ThrottledCaller 令牌桶限流 + 429 指数退避
type ThrottledCaller struct {
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewThrottledCaller rpm 为每分钟请求数，burst 为突发数
func NewThrottledCaller(rpm, burst int) *ThrottledCaller {
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &ThrottledCaller{
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		maxRetries: 3,
		baseDelay:  2 * time.Second,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Call 发起调用；429 重试用尽时返回带 fallback 标记的结构化回复而不是错误
func (c *ThrottledCaller) Call(ctx context.Context, h Handle, modelID string, msgs []*schema.Message, temperature float32, maxTokens int) (Reply, error) {
	if h == nil {
		return nil, errors.New("nil handle")
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := h.Generate(ctx, msgs,
			model.WithModel(modelID),
			model.WithTemperature(temperature),
			model.WithMaxTokens(maxTokens),
		)
		if err != nil {
			if !isRateLimited(err) {
				return nil, err
			}
			lastErr = err
			if i < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<i)
				logger.Log.Warnf("模型 %s 触发限流，%v 后重试 (%d/%d)", modelID, delay, i+1, c.maxRetries)
				if err := c.sleep(ctx, delay); err != nil {
					return nil, err
				}
			}
			continue
		}

		return replyOf(resp.Content), nil
	}

	return PayloadReply{
		"fallback": true,
		"fallback_data": map[string]any{
			"error":   "rate limited",
			"model":   modelID,
			"message": fmt.Sprint(lastErr),
		},
	}, nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// replyOf 内容本身是 JSON 对象时按结构化回复返回
func replyOf(content string) Reply {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if strings.HasPrefix(clean, "{") {
		var payload map[string]any
		if err := json.Unmarshal([]byte(clean), &payload); err == nil {
			return PayloadReply(payload)
		}
	}
	return TextReply(content)
}
