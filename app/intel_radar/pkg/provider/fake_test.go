package provider

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeHandle 按顺序返回预置结果并记录调用参数
type fakeHandle struct {
	mu      sync.Mutex
	results []fakeResult
	calls   []fakeCall
}

type fakeResult struct {
	content string
	err     error
}

type fakeCall struct {
	msgs []*schema.Message
	opts *model.Options
}

func (f *fakeHandle) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fakeCall{msgs: input, opts: model.GetCommonOptions(&model.Options{}, opts...)})
	if len(f.results) == 0 {
		return schema.AssistantMessage("", nil), nil
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return schema.AssistantMessage(r.content, nil), nil
}

// fakeCaller 直接返回预置回复
type fakeCaller struct {
	reply   Reply
	err     error
	panics  bool
	modelID string
	msgs    []*schema.Message
}

func (f *fakeCaller) Call(_ context.Context, _ Handle, modelID string, msgs []*schema.Message, _ float32, _ int) (Reply, error) {
	if f.panics {
		panic("boom")
	}
	f.modelID = modelID
	f.msgs = msgs
	return f.reply, f.err
}
