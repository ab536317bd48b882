package automation

import (
	"context"
	"fmt"

	"repo-autobot/internal/model"
)

// implementIssue runs the issue team: the checkout agent clones the default
// branch, then the supervisor routes between research, coding, review,
// testing, writing files and opening the pull request.
func (uc *usecase) implementIssue(ctx context.Context, task model.WorkflowTask) error {
	issue, err := intArg(task, ArgIssueNumber)
	if err != nil {
		return err
	}

	graph, err := uc.implementIssueGraph()
	if err != nil {
		return fmt.Errorf("implement issue #%d: %w", issue, err)
	}

	ctx, ws, err := uc.newWorkspace(ctx, task.Repo)
	if err != nil {
		return fmt.Errorf("implement issue #%d: %w", issue, err)
	}
	defer uc.cleanup(ctx, ws)

	st, err := uc.deps.Engine.Run(ctx, task, graph, ws)
	if err != nil {
		return fmt.Errorf("implement issue #%d: %w", issue, err)
	}
	uc.l.Infof(ctx, "%s: issue #%d handled in %d steps, branch %s", LogPrefixRun, issue, st.Steps, ws.Branch)
	return nil
}
