package classifier

import "repo-autobot/internal/model"

// ActionKind is the canonical outcome of classifying one webhook event.
type ActionKind string

const (
	ActionMainCommitIngested ActionKind = "main_commit_ingested"
	ActionPullRequestUpdated ActionKind = "pull_request_updated"
	ActionIssueOpened        ActionKind = "issue_opened"
	ActionSupportRequested   ActionKind = "support_requested"
	ActionReviewRequested    ActionKind = "review_requested"
	ActionNoOp               ActionKind = "noop"
)

// Action carries the normalized arguments of a classified event. Only the
// fields relevant to Kind are set.
type Action struct {
	Kind   ActionKind
	Reason string // Set for NoOp.

	Repo        model.RepositoryReference
	PullRequest *model.PullRequestContext
	Issue       *model.Issue

	// SupportRequested
	Comment *model.Comment
	Chain   model.ReplyChain

	// ReviewRequested
	Review         *model.Review
	ReviewComments []model.Comment
}

func (a Action) IsNoOp() bool {
	return a.Kind == ActionNoOp
}

// NoOp builds a no-op action with a human-readable reason.
func NoOp(reason string) Action {
	return Action{Kind: ActionNoOp, Reason: reason}
}

// Config holds the identity and trigger the classifier guards on.
type Config struct {
	BotLogin     string
	TriggerToken string
}
