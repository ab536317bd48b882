package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// LangChainAdapter adapts a langchaingo model (openai, ollama) to the
// Provider interface.
type LangChainAdapter struct {
	name  string
	model string
	llm   llms.Model
}

var _ Provider = (*LangChainAdapter)(nil)

func NewLangChainAdapter(name, model string, llm llms.Model) *LangChainAdapter {
	return &LangChainAdapter{name: name, model: model, llm: llm}
}

func (a *LangChainAdapter) Name() string  { return a.name }
func (a *LangChainAdapter) Model() string { return a.model }

// GenerateContent implements Provider interface
func (a *LangChainAdapter) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	messages := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemInstruction != nil {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, joinText(req.SystemInstruction.Parts)))
	}
	messages = append(messages, convertToLangChainMessages(req.Messages)...)

	var opts []llms.CallOption
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(convertToLangChainTools(req.Tools)))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := a.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.name, err)
	}

	return a.convertFromLangChainResponse(resp)
}

func convertToLangChainMessages(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, msg := range msgs {
		mc := llms.MessageContent{Role: langChainRole(msg.Role)}
		for _, p := range msg.Parts {
			switch {
			case p.FunctionCall != nil:
				argsJSON, _ := json.Marshal(p.FunctionCall.Args)
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   callID(p.FunctionCall.ID, p.FunctionCall.Name),
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      p.FunctionCall.Name,
						Arguments: string(argsJSON),
					},
				})
			case p.FunctionResponse != nil:
				responseJSON, _ := json.Marshal(p.FunctionResponse.Response)
				mc.Role = llms.ChatMessageTypeTool
				mc.Parts = append(mc.Parts, llms.ToolCallResponse{
					ToolCallID: callID(p.FunctionResponse.ID, p.FunctionResponse.Name),
					Name:       p.FunctionResponse.Name,
					Content:    string(responseJSON),
				})
			case p.Text != "":
				mc.Parts = append(mc.Parts, llms.TextContent{Text: p.Text})
			}
		}
		out = append(out, mc)
	}
	return out
}

func langChainRole(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	case RoleTool:
		return llms.ChatMessageTypeTool
	default:
		return llms.ChatMessageTypeHuman
	}
}

func convertToLangChainTools(tools []Tool) []llms.Tool {
	out := make([]llms.Tool, len(tools))
	for i, t := range tools {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func (a *LangChainAdapter) convertFromLangChainResponse(resp *llms.ContentResponse) (*Response, error) {
	out := &Response{
		Content:      Message{Role: RoleAssistant, Parts: []Part{}},
		ProviderName: a.name,
		ModelName:    a.model,
		Usage:        &Usage{},
	}
	if resp == nil || len(resp.Choices) == 0 {
		return out, nil
	}

	choice := resp.Choices[0]
	if choice.Content != "" {
		out.Content.Parts = append(out.Content.Parts, Part{Text: choice.Content})
	}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		args := map[string]any{}
		if tc.FunctionCall.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				return nil, fmt.Errorf("%s: %w: tool %s arguments: %v", a.name, ErrInvalidResponse, tc.FunctionCall.Name, err)
			}
		}
		out.Content.Parts = append(out.Content.Parts, Part{
			FunctionCall: &FunctionCall{ID: tc.ID, Name: tc.FunctionCall.Name, Args: args},
		})
	}

	out.Usage.InputTokens = intFromInfo(choice.GenerationInfo, "PromptTokens")
	out.Usage.OutputTokens = intFromInfo(choice.GenerationInfo, "CompletionTokens")
	out.Usage.TotalTokens = intFromInfo(choice.GenerationInfo, "TotalTokens")
	return out, nil
}

func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
