package automation

import (
	"context"
	"fmt"

	"repo-autobot/internal/model"
)

// addressComments checks out the pull request branch and lets the team act
// on the comment thread or review. The last answer is posted back on the
// pull request, also when the run failed.
func (uc *usecase) addressComments(ctx context.Context, task model.WorkflowTask) error {
	prNumber, err := intArg(task, ArgPRNumber)
	if err != nil {
		return err
	}
	branch, err := uc.resolveBranch(ctx, task, prNumber)
	if err != nil {
		return err
	}

	prompt := PromptAddressSupport
	if task.Arguments[ArgTrigger] == TriggerReview {
		prompt = PromptAddressReview
	}
	task.Instruction = fmt.Sprintf(prompt, prNumber, branch)
	if files, err := uc.deps.GitHub.ListFiles(ctx, task.Repo, prNumber); err != nil {
		uc.l.Warnf(ctx, "%s: list files of #%d: %v", LogPrefixRun, prNumber, err)
	} else if len(files) > 0 {
		task.Instruction += fmt.Sprintf(PromptCodeChanges, renderDiffs(files))
	}

	graph, err := uc.addressCommentsGraph(branch)
	if err != nil {
		return fmt.Errorf("address comments on #%d: %w", prNumber, err)
	}

	ctx, ws, err := uc.newWorkspace(ctx, task.Repo)
	if err != nil {
		return fmt.Errorf("address comments on #%d: %w", prNumber, err)
	}
	defer uc.cleanup(ctx, ws)

	st, runErr := uc.deps.Engine.Run(ctx, task, graph, ws)

	body := st.LastAnswer()
	switch {
	case runErr != nil:
		body = fmt.Sprintf(MsgRunFailed, runErr)
	case body == "":
		body = MsgNoAnswer
	}
	if _, err := uc.deps.GitHub.CreateComment(context.WithoutCancel(ctx), task.Repo, prNumber, uc.withMarker(body)); err != nil {
		uc.l.Errorf(ctx, "%s: reply on #%d: %v", LogPrefixRun, prNumber, err)
		if runErr == nil {
			return fmt.Errorf("address comments on #%d: reply: %w", prNumber, err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("address comments on #%d: %w", prNumber, runErr)
	}
	return nil
}
