package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"repo-autobot/pkg/llmprovider"
	pkgLog "repo-autobot/pkg/log"
)

type llmSupervisor struct {
	llm llmprovider.Generator
	l   pkgLog.Logger
}

// NewLLMSupervisor builds a supervisor that asks the LLM for the next node,
// either through a "route" function call or a JSON answer.
func NewLLMSupervisor(llm llmprovider.Generator, l pkgLog.Logger) Supervisor {
	return &llmSupervisor{llm: llm, l: l}
}

type routeDecision struct {
	Next string `json:"next"`
}

// Route returns one of in.Options. Unparseable or unknown answers fall back
// to FINISH; only an LLM failure is returned as an error.
func (s *llmSupervisor) Route(ctx context.Context, in RouteInput) (NodeName, error) {
	if len(in.Options) == 0 {
		return NodeFinish, nil
	}
	names := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		names = append(names, string(o))
	}
	members := strings.Join(names[:len(names)-1], ", ")

	prompt := workerPrompt(WorkerInput{Task: in.Task, History: in.History}) +
		"\n" + fmt.Sprintf(PromptSupervisorRoute, strings.Join(names, ", "))

	resp, err := s.llm.GenerateContent(ctx, &llmprovider.Request{
		SystemInstruction: llmprovider.SystemText(fmt.Sprintf(PromptSupervisorSystem, members)),
		Messages:          []llmprovider.Message{llmprovider.UserText(prompt)},
		Tools:             []llmprovider.Tool{routeTool(names)},
		Temperature:       SupervisorTemperature,
	})
	if err != nil {
		return NodeFinish, fmt.Errorf("%s: %w", LogPrefixSupervisor, err)
	}

	choice := s.parse(ctx, resp)
	for _, o := range in.Options {
		if strings.EqualFold(string(o), choice) {
			s.l.Infof(ctx, "%s: next=%s", LogPrefixSupervisor, o)
			return o, nil
		}
	}
	s.l.Warnf(ctx, "%s: choice %q is not an option, finishing", LogPrefixSupervisor, choice)
	return NodeFinish, nil
}

func (s *llmSupervisor) parse(ctx context.Context, resp *llmprovider.Response) string {
	for _, call := range resp.FunctionCalls() {
		if call.Name != routeToolName {
			continue
		}
		if next, ok := call.Args["next"].(string); ok {
			return strings.TrimSpace(next)
		}
	}

	text := stripCodeFence(resp.Text())
	if text == "" {
		return ""
	}

	var decision routeDecision
	if err := json.Unmarshal([]byte(text), &decision); err == nil {
		return strings.TrimSpace(decision.Next)
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err == nil {
		if err := json.Unmarshal([]byte(repaired), &decision); err == nil {
			return strings.TrimSpace(decision.Next)
		}
	}

	s.l.Warnf(ctx, "%s: unparseable route %q", LogPrefixSupervisor, text)
	// A bare option name is still a usable answer.
	return strings.Trim(text, "\"' \n")
}

// stripCodeFence removes a surrounding ```json ... ``` block.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	} else {
		return text
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func routeTool(options []string) llmprovider.Tool {
	return llmprovider.Tool{
		Name:        routeToolName,
		Description: "Select the next worker, or FINISH.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"next": map[string]any{
					"type": "string",
					"enum": options,
				},
			},
			"required": []string{"next"},
		},
	}
}
