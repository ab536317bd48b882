package classifier

const (
	LogPrefixClassify = "internal.classifier.Classify"

	DefaultBranchFallback = "main"
	branchRefPrefix       = "refs/heads/"
)

// NoOp reasons.
const (
	ReasonMalformedPayload    = "malformed payload"
	ReasonEventNotHandled     = "event not handled"
	ReasonActionNotHandled    = "action not handled"
	ReasonBotAuthor           = "event authored by bot"
	ReasonNoRelevantCommits   = "no relevant commits"
	ReasonBranchDeleted       = "branch deleted"
	ReasonNotMainOrReadyPR    = "commit not to default branch or ready pull request"
	ReasonPullRequestNotReady = "pull request is not ready"
	ReasonIssueIsPullRequest  = "issue is a pull request"
	ReasonNotOnPullRequest    = "comment is not on a pull request"
	ReasonMissingTrigger      = "missing trigger token"
	ReasonReviewUnavailable   = "review comments unavailable"
)
