package tools

import (
	"context"
	"time"

	"repo-autobot/internal/knowledge"
	"repo-autobot/internal/model"
	"repo-autobot/pkg/github"
)

// Git is the local working-copy surface the repository tools drive.
type Git interface {
	Clone(ctx context.Context, repo model.RepositoryReference, dir, branch string) error
	Checkout(ctx context.Context, dir, branch string) error
	CurrentBranch(ctx context.Context, dir string) (string, error)
	HasChanges(ctx context.Context, dir string) (bool, error)
	CommitAndPush(ctx context.Context, dir, branch, message string) error
	CreateBranchAndPush(ctx context.Context, dir, branch, message string) error
	Format(ctx context.Context, dir string, files []string) error
}

// PullRequests is the remote surface for opening and linking pull requests.
type PullRequests interface {
	CreatePullRequest(ctx context.Context, repo model.RepositoryReference, req github.NewPullRequest) (github.CreatedPullRequest, error)
	LinkIssue(ctx context.Context, repo model.RepositoryReference, prNumber, issue int) error
}

// Deps are the collaborators shared by every tool.
type Deps struct {
	Git            Git
	PullRequests   PullRequests
	Knowledge      knowledge.Store
	ValidFileTypes []string
	Now            func() time.Time
}
