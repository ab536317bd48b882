package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"repo-autobot/pkg/deepseek"
)

// DeepSeekAdapter adapts an OpenAI-compatible chat completion client to the
// Provider interface. It serves both deepseek and qwen (DashScope compatible
// mode).
type DeepSeekAdapter struct {
	name   string
	client deepseek.IDeepSeek
}

var _ Provider = (*DeepSeekAdapter)(nil)

// NewDeepSeekAdapter creates a new adapter reporting itself as name
func NewDeepSeekAdapter(name string, client deepseek.IDeepSeek) *DeepSeekAdapter {
	return &DeepSeekAdapter{name: name, client: client}
}

// GenerateContent implements Provider interface
func (a *DeepSeekAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	dsReq := &deepseek.Request{
		Messages:    convertToDeepSeekMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	if req.SystemInstruction != nil && len(req.SystemInstruction.Parts) > 0 {
		systemMsg := deepseek.Message{
			Role:    RoleSystem,
			Content: joinText(req.SystemInstruction.Parts),
		}
		dsReq.Messages = append([]deepseek.Message{systemMsg}, dsReq.Messages...)
	}

	if len(req.Tools) > 0 {
		dsReq.Tools = convertToDeepSeekTools(req.Tools)
	}

	resp, err := a.client.GenerateContent(ctx, dsReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.name, err)
	}

	return a.convertFromDeepSeekResponse(resp)
}

func (a *DeepSeekAdapter) Name() string {
	return a.name
}

func (a *DeepSeekAdapter) Model() string {
	return a.client.Model()
}

// convertToDeepSeekMessages flattens normalized messages. Every function
// response becomes its own "tool" message, as the chat completions API
// requires one message per tool_call_id.
func convertToDeepSeekMessages(msgs []Message) []deepseek.Message {
	messages := make([]deepseek.Message, 0, len(msgs))
	for _, msg := range msgs {
		var responses []deepseek.Message
		dsMsg := deepseek.Message{Role: msg.Role, Content: joinText(msg.Parts)}

		for _, p := range msg.Parts {
			if fc := p.FunctionCall; fc != nil {
				argsJSON, _ := json.Marshal(fc.Args)
				dsMsg.ToolCalls = append(dsMsg.ToolCalls, deepseek.ToolCall{
					ID:   callID(fc.ID, fc.Name),
					Type: "function",
					Function: deepseek.FunctionCall{
						Name:      fc.Name,
						Arguments: string(argsJSON),
					},
				})
			}
			if fr := p.FunctionResponse; fr != nil {
				responseJSON, _ := json.Marshal(fr.Response)
				responses = append(responses, deepseek.Message{
					Role:       RoleTool,
					ToolCallID: callID(fr.ID, fr.Name),
					Name:       fr.Name,
					Content:    string(responseJSON),
				})
			}
		}

		if len(responses) > 0 {
			messages = append(messages, responses...)
			continue
		}
		messages = append(messages, dsMsg)
	}
	return messages
}

func convertToDeepSeekTools(tools []Tool) []deepseek.Tool {
	dsTools := make([]deepseek.Tool, len(tools))
	for i, t := range tools {
		dsTools[i] = deepseek.Tool{
			Type: "function",
			Function: deepseek.FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return dsTools
}

func (a *DeepSeekAdapter) convertFromDeepSeekResponse(resp *deepseek.Response) (*Response, error) {
	out := &Response{
		Content:      Message{Role: RoleAssistant, Parts: []Part{}},
		ProviderName: a.name,
		ModelName:    resp.Model,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	if choice.Message.Content != "" {
		out.Content.Parts = append(out.Content.Parts, Part{Text: choice.Message.Content})
	}

	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("%s: %w: tool %s arguments: %v", a.name, ErrInvalidResponse, tc.Function.Name, err)
			}
		}
		out.Content.Parts = append(out.Content.Parts, Part{
			FunctionCall: &FunctionCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}

	return out, nil
}

func joinText(parts []Part) string {
	var text string
	for _, p := range parts {
		text += p.Text
	}
	return text
}

func callID(id, name string) string {
	if id != "" {
		return id
	}
	return "call_" + name
}
