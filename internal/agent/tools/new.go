package tools

import (
	"time"

	"repo-autobot/internal/agent"
)

// NewRegistry registers every tool backed by deps. Knowledge search is only
// registered when a store is configured.
func NewRegistry(deps Deps) (*agent.ToolRegistry, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	registry := agent.NewToolRegistry()
	err := registry.Register(
		NewCloneRepositoryTool(deps.Git),
		NewCheckoutBranchTool(deps.Git),
		NewHasChangesTool(deps.Git),
		NewCommitAndPushTool(deps.Git),
		NewGenerateBranchNameTool(now),
		NewCreateBranchAndPushTool(deps.Git),
		NewCreatePullRequestTool(deps.PullRequests),
		NewLinkIssueTool(deps.PullRequests),
		NewFormatFilesTool(deps.Git, deps.ValidFileTypes),
		NewCreateDirectoryTool(),
		NewFindFileTool(),
		NewReadFileTool(),
		NewCreateFileTool(deps.ValidFileTypes),
		NewUpdateFileTool(deps.ValidFileTypes),
	)
	if err != nil {
		return nil, err
	}
	if deps.Knowledge != nil {
		if err := registry.Register(NewSearchKnowledgeTool(deps.Knowledge)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
