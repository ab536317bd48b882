package tools

import (
	"context"
	"fmt"
	"time"

	"repo-autobot/internal/agent"
	pkgGit "repo-autobot/pkg/git"
)

func ready(ws *agent.Workspace) error {
	if ws == nil || !ws.Ready {
		return agent.ErrWorkspaceNotReady
	}
	return nil
}

// CloneRepositoryTool clones the run's repository into its workspace.
type CloneRepositoryTool struct {
	git Git
}

func NewCloneRepositoryTool(git Git) agent.Tool {
	return &CloneRepositoryTool{git: git}
}

func (t *CloneRepositoryTool) Name() agent.Capability { return agent.CapCloneRepository }

func (t *CloneRepositoryTool) Description() string {
	return "Clone the repository into the local workspace. Optionally check out a branch. Must run before any file or git tool."
}

func (t *CloneRepositoryTool) Parameters() map[string]any {
	return schema(nil, map[string]any{
		"branch": prop("string", "Branch to check out after cloning (default: the repository default branch)"),
	})
}

func (t *CloneRepositoryTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if ws == nil || ws.LocalPath == "" {
		return nil, agent.ErrWorkspaceNotReady
	}
	branch := optionalString(params, "branch")
	if branch == "" {
		branch = ws.Branch
	}

	if err := t.git.Clone(ctx, ws.Repo, ws.LocalPath, branch); err != nil {
		return nil, fmt.Errorf("clone failed: %w", err)
	}
	current, err := t.git.CurrentBranch(ctx, ws.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("clone failed: %w", err)
	}

	ws.Ready = true
	ws.Branch = current
	if ws.DefaultBranch == "" && branch == "" {
		ws.DefaultBranch = current
	}
	return map[string]any{
		"repository": ws.Repo.FullPath(),
		"branch":     current,
	}, nil
}

// CheckoutBranchTool switches the workspace to an existing remote branch.
type CheckoutBranchTool struct {
	git Git
}

func NewCheckoutBranchTool(git Git) agent.Tool {
	return &CheckoutBranchTool{git: git}
}

func (t *CheckoutBranchTool) Name() agent.Capability { return agent.CapCheckoutBranch }

func (t *CheckoutBranchTool) Description() string {
	return "Check out an existing branch of the cloned repository and pull its latest commits."
}

func (t *CheckoutBranchTool) Parameters() map[string]any {
	return schema([]string{"branch"}, map[string]any{
		"branch": prop("string", "Branch name, e.g. the pull request source branch"),
	})
}

func (t *CheckoutBranchTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	branch, err := requiredString(params, "branch")
	if err != nil {
		return nil, err
	}
	if err := t.git.Checkout(ctx, ws.LocalPath, branch); err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}
	ws.Branch = branch
	return map[string]any{"branch": branch}, nil
}

type HasChangesTool struct {
	git Git
}

func NewHasChangesTool(git Git) agent.Tool {
	return &HasChangesTool{git: git}
}

func (t *HasChangesTool) Name() agent.Capability { return agent.CapHasChanges }

func (t *HasChangesTool) Description() string {
	return "Report whether the working copy has uncommitted changes."
}

func (t *HasChangesTool) Parameters() map[string]any {
	return schema(nil, map[string]any{})
}

func (t *HasChangesTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	changed, err := t.git.HasChanges(ctx, ws.LocalPath)
	if err != nil {
		return nil, err
	}
	return map[string]any{"has_changes": changed}, nil
}

// CommitAndPushTool commits to the current branch and pushes it.
type CommitAndPushTool struct {
	git Git
}

func NewCommitAndPushTool(git Git) agent.Tool {
	return &CommitAndPushTool{git: git}
}

func (t *CommitAndPushTool) Name() agent.Capability { return agent.CapCommitAndPush }

func (t *CommitAndPushTool) Description() string {
	return "Commit every change in the working copy to the current branch and push it to origin."
}

func (t *CommitAndPushTool) Parameters() map[string]any {
	return schema([]string{"message"}, map[string]any{
		"message": prop("string", "Commit message"),
	})
}

func (t *CommitAndPushTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	message, err := requiredString(params, "message")
	if err != nil {
		return nil, err
	}
	if ws.Branch == "" {
		return nil, fmt.Errorf("no branch checked out")
	}

	err = t.git.CommitAndPush(ctx, ws.LocalPath, ws.Branch, message)
	if pkgGit.IsNothingToCommit(err) {
		return map[string]any{"pushed": false, "reason": "no changes"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commit and push failed: %w", err)
	}
	return map[string]any{"pushed": true, "branch": ws.Branch}, nil
}

type GenerateBranchNameTool struct {
	now func() time.Time
}

func NewGenerateBranchNameTool(now func() time.Time) agent.Tool {
	return &GenerateBranchNameTool{now: now}
}

func (t *GenerateBranchNameTool) Name() agent.Capability { return agent.CapGenerateBranchName }

func (t *GenerateBranchNameTool) Description() string {
	return "Generate a unique branch name for implementing a GitHub issue."
}

func (t *GenerateBranchNameTool) Parameters() map[string]any {
	return schema([]string{"issue_number"}, map[string]any{
		"issue_number": prop("integer", "Number of the issue being implemented"),
	})
}

func (t *GenerateBranchNameTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	issue, err := requiredInt(params, "issue_number")
	if err != nil {
		return nil, err
	}
	return map[string]any{"branch": pkgGit.BranchNameForIssue(issue, t.now())}, nil
}

// CreateBranchAndPushTool starts a new branch from the current one with all
// pending changes.
type CreateBranchAndPushTool struct {
	git Git
}

func NewCreateBranchAndPushTool(git Git) agent.Tool {
	return &CreateBranchAndPushTool{git: git}
}

func (t *CreateBranchAndPushTool) Name() agent.Capability { return agent.CapCreateBranchAndPush }

func (t *CreateBranchAndPushTool) Description() string {
	return "Create a new branch with every pending change committed and push it to origin."
}

func (t *CreateBranchAndPushTool) Parameters() map[string]any {
	return schema([]string{"branch", "message"}, map[string]any{
		"branch":  prop("string", "New branch name (use generate_branch_name)"),
		"message": prop("string", "Commit message"),
	})
}

func (t *CreateBranchAndPushTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	branch, err := requiredString(params, "branch")
	if err != nil {
		return nil, err
	}
	message, err := requiredString(params, "message")
	if err != nil {
		return nil, err
	}

	if ws.DefaultBranch == "" {
		ws.DefaultBranch = ws.Branch
	}
	if err := t.git.CreateBranchAndPush(ctx, ws.LocalPath, branch, message); err != nil {
		return nil, fmt.Errorf("create branch failed: %w", err)
	}
	ws.Branch = branch
	return map[string]any{"branch": branch, "base": ws.DefaultBranch}, nil
}

// FormatFilesTool runs the configured formatter over files of an allowed type.
type FormatFilesTool struct {
	git   Git
	types fileTypes
}

func NewFormatFilesTool(git Git, validFileTypes []string) agent.Tool {
	return &FormatFilesTool{git: git, types: newFileTypes(validFileTypes)}
}

func (t *FormatFilesTool) Name() agent.Capability { return agent.CapFormatFiles }

func (t *FormatFilesTool) Description() string {
	return "Run the code formatter over the given files. Files with unsupported extensions are skipped."
}

func (t *FormatFilesTool) Parameters() map[string]any {
	return schema([]string{"files"}, map[string]any{
		"files": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Repository-relative file paths",
		},
	})
}

func (t *FormatFilesTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}

	var files, skipped []string
	for _, f := range stringList(params, "files") {
		if _, err := ws.Resolve(f); err != nil {
			return nil, err
		}
		if !t.types.allowed(f) {
			skipped = append(skipped, f)
			continue
		}
		files = append(files, f)
	}
	if err := t.git.Format(ctx, ws.LocalPath, files); err != nil {
		return nil, err
	}
	return map[string]any{"formatted": files, "skipped": skipped}, nil
}
