package classifier

import (
	"context"

	"repo-autobot/internal/model"
)

// Classifier turns a webhook event into one Action. It never fails: every
// error path yields a NoOp.
type Classifier interface {
	Classify(ctx context.Context, event model.WebhookEvent) Action
}

// CommentSource lists pull request comments for reply-chain and review
// resolution.
type CommentSource interface {
	ListComments(ctx context.Context, repo model.RepositoryReference, number int) ([]model.Comment, error)
	GetReviewComments(ctx context.Context, repo model.RepositoryReference, number int, reviewID int64) ([]model.Comment, error)
}
