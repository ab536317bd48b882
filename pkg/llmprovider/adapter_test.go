package llmprovider

import (
	"context"
	"errors"
	"testing"

	"repo-autobot/pkg/deepseek"
)

type mockDeepSeek struct {
	got  *deepseek.Request
	resp *deepseek.Response
	err  error
}

func (m *mockDeepSeek) GenerateContent(ctx context.Context, req *deepseek.Request) (*deepseek.Response, error) {
	m.got = req
	return m.resp, m.err
}

func (m *mockDeepSeek) Model() string { return "deepseek-chat" }

func TestDeepSeekAdapter_MapsAllToolCalls(t *testing.T) {
	client := &mockDeepSeek{resp: &deepseek.Response{
		Model: "deepseek-chat",
		Choices: []deepseek.Choice{{Message: deepseek.Message{
			Role: "assistant",
			ToolCalls: []deepseek.ToolCall{
				{ID: "a", Function: deepseek.FunctionCall{Name: "read_file", Arguments: `{"path":"main.go"}`}},
				{ID: "b", Function: deepseek.FunctionCall{Name: "has_changes", Arguments: ``}},
			},
		}}},
	}}
	adapter := NewDeepSeekAdapter("deepseek", client)

	resp, err := adapter.GenerateContent(context.Background(), &Request{
		SystemInstruction: SystemText("you are a coder"),
		Messages: []Message{
			UserText("fix it"),
			{Role: RoleAssistant, Parts: []Part{
				{FunctionCall: &FunctionCall{ID: "x", Name: "find_file", Args: map[string]any{"name": "a"}}},
				{FunctionCall: &FunctionCall{ID: "y", Name: "find_file", Args: map[string]any{"name": "b"}}},
			}},
			{Role: RoleTool, Parts: []Part{
				{FunctionResponse: &FunctionResponse{ID: "x", Name: "find_file", Response: map[string]any{"path": "a.go"}}},
				{FunctionResponse: &FunctionResponse{ID: "y", Name: "find_file", Response: map[string]any{"error": "not found"}}},
			}},
		},
		Tools: []Tool{{Name: "read_file", Parameters: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	calls := resp.FunctionCalls()
	if len(calls) != 2 || calls[0].ID != "a" || calls[1].Name != "has_changes" {
		t.Fatalf("unexpected function calls %+v", calls)
	}
	if calls[0].Args["path"] != "main.go" {
		t.Errorf("expected parsed args, got %+v", calls[0].Args)
	}

	msgs := client.got.Messages
	// system, user, assistant with two tool calls, two tool messages
	if len(msgs) != 5 {
		t.Fatalf("expected 5 outgoing messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleSystem || len(msgs[2].ToolCalls) != 2 {
		t.Errorf("unexpected message layout %+v", msgs)
	}
	if msgs[3].ToolCallID != "x" || msgs[4].ToolCallID != "y" || msgs[4].Role != RoleTool {
		t.Errorf("tool responses not paired by id: %+v %+v", msgs[3], msgs[4])
	}
	if len(client.got.Tools) != 1 || client.got.Tools[0].Type != "function" {
		t.Errorf("tools not forwarded: %+v", client.got.Tools)
	}
}

func TestDeepSeekAdapter_InvalidArguments(t *testing.T) {
	client := &mockDeepSeek{resp: &deepseek.Response{
		Choices: []deepseek.Choice{{Message: deepseek.Message{
			ToolCalls: []deepseek.ToolCall{{ID: "a", Function: deepseek.FunctionCall{Name: "read_file", Arguments: `{"path":`}}},
		}}},
	}}
	_, err := NewDeepSeekAdapter("deepseek", client).GenerateContent(context.Background(), helloRequest)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestDeepSeekAdapter_NameAndModel(t *testing.T) {
	adapter := NewDeepSeekAdapter("qwen", &mockDeepSeek{})
	if adapter.Name() != "qwen" || adapter.Model() != "deepseek-chat" {
		t.Errorf("unexpected identity %s/%s", adapter.Name(), adapter.Model())
	}
}
