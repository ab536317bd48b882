package automation

import (
	"context"

	"repo-autobot/internal/classifier"
	"repo-autobot/internal/ledger/repository"
	"repo-autobot/internal/model"
)

type UseCase interface {
	// Dispatch maps action to a workflow and runs it in the background.
	// NoOp actions return false without starting anything.
	Dispatch(ctx context.Context, deliveryID string, action classifier.Action) (model.WorkflowKind, bool, error)

	// Run executes task synchronously.
	Run(ctx context.Context, task model.WorkflowTask) error

	// Shutdown stops accepting work and waits for in-flight runs until ctx
	// is done.
	Shutdown(ctx context.Context) error
}

// GitHub is the remote surface the workflows read from and write back to.
type GitHub interface {
	GetPullRequest(ctx context.Context, repo model.RepositoryReference, number int) (model.PullRequestContext, error)
	ListFiles(ctx context.Context, repo model.RepositoryReference, number int) ([]model.FileDiff, error)
	FetchLinkedIssues(ctx context.Context, repo model.RepositoryReference, prNumber int) ([]model.Issue, error)
	CreateComment(ctx context.Context, repo model.RepositoryReference, number int, body string) (int64, error)
	DeleteMarkedComments(ctx context.Context, repo model.RepositoryReference, number int, marker string) (int, error)
}

// Ledger receives the status transitions of dispatched deliveries.
type Ledger interface {
	UpdateStatus(ctx context.Context, opt repository.UpdateStatusOptions) error
}
