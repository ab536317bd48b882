package llmprovider

import (
	"context"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	got  []llms.MessageContent
	opts llms.CallOptions
	resp *llms.ContentResponse
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.got = messages
	for _, o := range options {
		o(&f.opts)
	}
	return f.resp, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func TestLangChainAdapter_GenerateContent(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content: "let me look",
		ToolCalls: []llms.ToolCall{{
			ID:           "call_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "read_file", Arguments: `{"path":"a.go"}`},
		}},
		GenerationInfo: map[string]any{"PromptTokens": 12, "CompletionTokens": 3, "TotalTokens": 15},
	}}}}
	adapter := NewLangChainAdapter("openai", "gpt-4o", model)

	resp, err := adapter.GenerateContent(context.Background(), &Request{
		SystemInstruction: SystemText("sys"),
		Messages: []Message{
			UserText("hi"),
			{Role: RoleTool, Parts: []Part{{FunctionResponse: &FunctionResponse{ID: "c0", Name: "has_changes", Response: map[string]any{"changed": true}}}}},
		},
		Tools: []Tool{{Name: "read_file", Description: "read", Parameters: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if resp.Text() != "let me look" {
		t.Errorf("unexpected text %q", resp.Text())
	}
	calls := resp.FunctionCalls()
	if len(calls) != 1 || calls[0].Args["path"] != "a.go" {
		t.Errorf("unexpected calls %+v", calls)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}

	if len(model.got) != 3 || model.got[0].Role != llms.ChatMessageTypeSystem || model.got[2].Role != llms.ChatMessageTypeTool {
		t.Errorf("unexpected outgoing messages %+v", model.got)
	}
	if len(model.opts.Tools) != 1 || model.opts.Tools[0].Function.Name != "read_file" {
		t.Errorf("tools not forwarded: %+v", model.opts.Tools)
	}
}
