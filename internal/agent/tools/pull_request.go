package tools

import (
	"context"
	"fmt"

	"repo-autobot/internal/agent"
	"repo-autobot/pkg/github"
)

// CreatePullRequestTool opens a pull request from the workspace branch.
type CreatePullRequestTool struct {
	prs PullRequests
}

func NewCreatePullRequestTool(prs PullRequests) agent.Tool {
	return &CreatePullRequestTool{prs: prs}
}

func (t *CreatePullRequestTool) Name() agent.Capability { return agent.CapCreatePullRequest }

func (t *CreatePullRequestTool) Description() string {
	return "Open a pull request from the current branch. The base defaults to the repository default branch."
}

func (t *CreatePullRequestTool) Parameters() map[string]any {
	return schema([]string{"title", "body"}, map[string]any{
		"title": prop("string", "Pull request title"),
		"body":  prop("string", "Pull request description in Markdown"),
		"base":  prop("string", "Target branch (optional)"),
	})
}

func (t *CreatePullRequestTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	title, err := requiredString(params, "title")
	if err != nil {
		return nil, err
	}
	body := optionalString(params, "body")
	base := optionalString(params, "base")
	if base == "" {
		base = ws.DefaultBranch
	}
	if base == "" || base == ws.Branch {
		return nil, fmt.Errorf("base branch must differ from head branch %q", ws.Branch)
	}

	created, err := t.prs.CreatePullRequest(ctx, ws.Repo, github.NewPullRequest{
		Title: title,
		Body:  body,
		Head:  ws.Branch,
		Base:  base,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"number": created.Number, "url": created.URL}, nil
}

type LinkIssueTool struct {
	prs PullRequests
}

func NewLinkIssueTool(prs PullRequests) agent.Tool {
	return &LinkIssueTool{prs: prs}
}

func (t *LinkIssueTool) Name() agent.Capability { return agent.CapLinkIssueToPullRequest }

func (t *LinkIssueTool) Description() string {
	return "Link an issue to a pull request so merging the pull request closes the issue."
}

func (t *LinkIssueTool) Parameters() map[string]any {
	return schema([]string{"pr_number", "issue_number"}, map[string]any{
		"pr_number":    prop("integer", "Pull request number"),
		"issue_number": prop("integer", "Issue number"),
	})
}

func (t *LinkIssueTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if ws == nil {
		return nil, agent.ErrWorkspaceNotReady
	}
	pr, err := requiredInt(params, "pr_number")
	if err != nil {
		return nil, err
	}
	issue, err := requiredInt(params, "issue_number")
	if err != nil {
		return nil, err
	}
	if err := t.prs.LinkIssue(ctx, ws.Repo, pr, issue); err != nil {
		return nil, err
	}
	return map[string]any{"linked": true, "pr_number": pr, "issue_number": issue}, nil
}
