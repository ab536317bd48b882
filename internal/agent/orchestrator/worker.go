package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"repo-autobot/internal/agent"
	"repo-autobot/pkg/llmprovider"
	pkgLog "repo-autobot/pkg/log"
)

// turnState is the position of an LLM worker inside one turn.
type turnState int

const (
	stateReasoning turnState = iota
	stateToolPending
	stateToolResolved
	stateDone
)

func (s turnState) String() string {
	switch s {
	case stateReasoning:
		return "reasoning"
	case stateToolPending:
		return "tool_pending"
	case stateToolResolved:
		return "tool_resolved"
	default:
		return "done"
	}
}

type llmWorker struct {
	node          WorkerNode
	llm           llmprovider.Generator
	tools         *agent.ToolRegistry
	maxToolRounds int
	l             pkgLog.Logger
}

// NewLLMWorker builds a worker whose reasoning is an LLM restricted to the
// node's capabilities.
func NewLLMWorker(node WorkerNode, llm llmprovider.Generator, registry *agent.ToolRegistry, maxToolRounds int, l pkgLog.Logger) (Worker, error) {
	tools, err := registry.Subset(node.Capabilities...)
	if err != nil {
		return nil, fmt.Errorf("worker %s: %w", node.Name, err)
	}
	if maxToolRounds <= 0 {
		maxToolRounds = DefaultMaxToolRounds
	}
	return &llmWorker{
		node:          node,
		llm:           llm,
		tools:         tools,
		maxToolRounds: maxToolRounds,
		l:             l,
	}, nil
}

func (w *llmWorker) Name() NodeName {
	return w.node.Name
}

// Execute runs Reasoning → ToolPending → ToolResolved → … → Done. Each tool
// round takes one step from the run budget.
func (w *llmWorker) Execute(ctx context.Context, in WorkerInput) (string, error) {
	req := &llmprovider.Request{
		SystemInstruction: llmprovider.SystemText(w.node.Role),
		Messages:          []llmprovider.Message{llmprovider.UserText(workerPrompt(in))},
		Tools:             w.tools.ToFunctionDefinitions(),
		Temperature:       WorkerTemperature,
	}

	var (
		state   = stateReasoning
		pending []llmprovider.FunctionCall
		rounds  int
		answer  string
	)

	for state != stateDone {
		w.l.Debugf(ctx, "%s: %s state=%s round=%d", LogPrefixWorker, w.node.Name, state, rounds)
		switch state {
		case stateReasoning:
			resp, err := w.llm.GenerateContent(ctx, req)
			if err != nil {
				return "", fmt.Errorf("%s reasoning: %w", w.node.Name, err)
			}
			pending = resp.FunctionCalls()
			if len(pending) == 0 {
				answer = strings.TrimSpace(resp.Text())
				state = stateDone
				continue
			}
			req.Messages = append(req.Messages, llmprovider.Message{
				Role:  llmprovider.RoleAssistant,
				Parts: resp.Content.Parts,
			})
			state = stateToolPending

		case stateToolPending:
			if rounds >= w.maxToolRounds {
				return "", fmt.Errorf("%s: %w after %d rounds", w.node.Name, ErrToolRoundsExceeded, rounds)
			}
			if err := in.Budget.Consume(); err != nil {
				return "", err
			}
			results := make([]llmprovider.Part, 0, len(pending))
			for _, call := range pending {
				results = append(results, llmprovider.Part{
					FunctionResponse: &llmprovider.FunctionResponse{
						ID:       call.ID,
						Name:     call.Name,
						Response: w.invoke(ctx, in.Workspace, call),
					},
				})
			}
			req.Messages = append(req.Messages, llmprovider.Message{Role: llmprovider.RoleTool, Parts: results})
			pending = nil
			state = stateToolResolved

		case stateToolResolved:
			rounds++
			state = stateReasoning
		}
	}

	if answer == "" {
		return "", fmt.Errorf("%s: %w", w.node.Name, ErrEmptyAnswer)
	}
	return answer, nil
}

// invoke runs one tool call. Failures become {"error": ...} results for the
// model to react to.
func (w *llmWorker) invoke(ctx context.Context, ws *agent.Workspace, call llmprovider.FunctionCall) any {
	tool, ok := w.tools.Get(call.Name)
	if !ok {
		w.l.Warnf(ctx, "%s: %s requested tool outside its capabilities: %s", LogPrefixWorker, w.node.Name, call.Name)
		return map[string]string{"error": "tool not available to this worker: " + call.Name}
	}

	w.l.Infof(ctx, "%s: %s calling %s", LogPrefixWorker, w.node.Name, call.Name)
	res, err := tool.Execute(ctx, ws, call.Args)
	if err != nil {
		w.l.Warnf(ctx, "%s: %s tool %s failed: %v", LogPrefixWorker, w.node.Name, call.Name, err)
		return map[string]string{"error": err.Error()}
	}
	return res
}

func workerPrompt(in WorkerInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, PromptWorkerTask, in.Task.Instruction)
	if in.Workspace != nil {
		fmt.Fprintf(&b, PromptWorkerWorkspace, in.Workspace.LocalPath, in.Workspace.Repo.FullPath(), in.Workspace.Branch)
	}
	if len(in.Task.ConversationHistory) > 0 {
		b.WriteString(PromptWorkerConversationHeader)
		for _, line := range in.Task.ConversationHistory {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if len(in.History) > 0 {
		b.WriteString(PromptWorkerHistoryHeader)
		for _, e := range in.History {
			fmt.Fprintf(&b, PromptWorkerHistoryLine, e.Worker, e.Content)
		}
	}
	return b.String()
}
