package automation

import (
	"fmt"
	"strconv"
	"strings"

	"repo-autobot/internal/classifier"
	"repo-autobot/internal/model"
)

// TaskFor maps a classified action onto the workflow that handles it.
func TaskFor(action classifier.Action) (model.WorkflowTask, bool) {
	switch action.Kind {
	case classifier.ActionIssueOpened:
		if action.Issue == nil {
			return model.WorkflowTask{}, false
		}
		return model.WorkflowTask{
			Kind: model.WorkflowImplementIssue,
			Repo: action.Repo,
			Arguments: map[string]string{
				ArgIssueNumber: strconv.Itoa(action.Issue.Number),
				ArgIssueTitle:  action.Issue.Title,
				ArgIssueBody:   action.Issue.Body,
			},
			Instruction: fmt.Sprintf(PromptImplementIssue, action.Issue.Number, action.Issue.Title, action.Issue.Body),
		}, true

	case classifier.ActionPullRequestUpdated:
		if action.PullRequest == nil {
			return model.WorkflowTask{}, false
		}
		return model.WorkflowTask{
			Kind:      model.WorkflowReviewAndBeautify,
			Repo:      action.Repo,
			Arguments: prArguments(action.PullRequest),
		}, true

	case classifier.ActionSupportRequested:
		if action.PullRequest == nil || action.Comment == nil {
			return model.WorkflowTask{}, false
		}
		args := prArguments(action.PullRequest)
		args[ArgTrigger] = TriggerComment
		args[ArgCommentID] = strconv.FormatInt(action.Comment.ID, 10)

		chain := action.Chain
		if len(chain) == 0 {
			chain = model.ReplyChain{*action.Comment}
		}
		history := make([]string, 0, len(chain))
		for _, c := range chain {
			history = append(history, commentLine(c))
		}
		return model.WorkflowTask{
			Kind:                model.WorkflowAddressComments,
			Repo:                action.Repo,
			Arguments:           args,
			ConversationHistory: history,
		}, true

	case classifier.ActionReviewRequested:
		if action.PullRequest == nil || action.Review == nil {
			return model.WorkflowTask{}, false
		}
		args := prArguments(action.PullRequest)
		args[ArgTrigger] = TriggerReview
		args[ArgReviewID] = strconv.FormatInt(action.Review.ID, 10)

		history := make([]string, 0, len(action.ReviewComments)+1)
		history = append(history, fmt.Sprintf("@%s (review): %s", action.Review.AuthorLogin, action.Review.Body))
		for _, c := range action.ReviewComments {
			history = append(history, commentLine(c))
		}
		return model.WorkflowTask{
			Kind:                model.WorkflowAddressComments,
			Repo:                action.Repo,
			Arguments:           args,
			ConversationHistory: history,
		}, true

	case classifier.ActionMainCommitIngested:
		return model.WorkflowTask{
			Kind: model.WorkflowIngestRepository,
			Repo: action.Repo,
		}, true
	}
	return model.WorkflowTask{}, false
}

func prArguments(pr *model.PullRequestContext) map[string]string {
	return map[string]string{
		ArgPRNumber:     strconv.Itoa(pr.Number),
		ArgSourceBranch: pr.SourceBranch,
	}
}

// commentLine renders a comment for the conversation history. Review
// comments keep the file and hunk they refer to.
func commentLine(c model.Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s", c.AuthorLogin)
	if c.Path != "" {
		fmt.Fprintf(&b, " on %s", c.Path)
	}
	fmt.Fprintf(&b, ": %s", c.Body)
	if c.DiffHunk != "" {
		fmt.Fprintf(&b, "\n```diff\n%s\n```", c.DiffHunk)
	}
	return b.String()
}

func intArg(task model.WorkflowTask, key string) (int, error) {
	raw := task.Arguments[key]
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingArgument, key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMissingArgument, key, raw)
	}
	return n, nil
}

// renderDiffs joins file patches the way they are shown to the LLM.
func renderDiffs(files []model.FileDiff) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "File: %s\nDiff:\n%s\n\n", f.Filename, f.Patch)
	}
	return b.String()
}
