package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/classifier"
	"repo-autobot/internal/ledger/repository"
	"repo-autobot/internal/model"
	pkgLog "repo-autobot/pkg/log"
)

type usecase struct {
	cfg  Config
	deps Deps
	l    pkgLog.Logger

	// base outlives the webhook request that dispatched a run.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	repoLocks sync.Map // repo key -> *sync.Mutex
}

// Dispatch starts the workflow for action on its own goroutine with a
// per-run timeout. The delivery is marked dispatched before the goroutine
// starts and succeeded or failed when it ends.
func (uc *usecase) Dispatch(ctx context.Context, deliveryID string, action classifier.Action) (model.WorkflowKind, bool, error) {
	task, ok := TaskFor(action)
	if !ok {
		return "", false, nil
	}

	uc.mu.Lock()
	if uc.closed {
		uc.mu.Unlock()
		return task.Kind, false, ErrShuttingDown
	}
	uc.wg.Add(1)
	uc.mu.Unlock()

	uc.updateStatus(ctx, deliveryID, model.DeliveryDispatched, task.Kind, nil)
	uc.l.Infof(ctx, "%s: %s for %s", LogPrefixDispatch, task.Kind, task.Repo.FullPath())

	runCtx := pkgLog.WithDeliveryID(uc.base, deliveryID)
	go func() {
		defer uc.wg.Done()

		ctx, cancel := context.WithTimeout(runCtx, uc.cfg.RunTimeout)
		defer cancel()

		err := uc.runSafe(ctx, task)
		status := model.DeliverySucceeded
		if err != nil {
			status = model.DeliveryFailed
		}
		uc.updateStatus(context.WithoutCancel(ctx), deliveryID, status, task.Kind, err)
	}()
	return task.Kind, true, nil
}

func (uc *usecase) runSafe(ctx context.Context, task model.WorkflowTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", task.Kind, r)
			uc.l.Errorf(ctx, "%s: %v", LogPrefixRun, err)
		}
	}()
	return uc.Run(ctx, task)
}

func (uc *usecase) Run(ctx context.Context, task model.WorkflowTask) error {
	start := uc.deps.Now()
	uc.l.Infof(ctx, "%s: %s started for %s", LogPrefixRun, task.Kind, task.Repo.FullPath())

	var err error
	switch task.Kind {
	case model.WorkflowImplementIssue:
		err = uc.implementIssue(ctx, task)
	case model.WorkflowReviewAndBeautify:
		err = uc.reviewAndBeautify(ctx, task)
	case model.WorkflowAddressComments:
		err = uc.addressComments(ctx, task)
	case model.WorkflowIngestRepository:
		err = uc.ingestRepository(ctx, task)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedWorkflow, task.Kind)
	}

	elapsed := uc.deps.Now().Sub(start).Round(time.Millisecond)
	if err != nil {
		uc.l.Errorf(ctx, "%s: %s failed after %s: %v", LogPrefixRun, task.Kind, elapsed, err)
		return err
	}
	uc.l.Infof(ctx, "%s: %s completed in %s", LogPrefixRun, task.Kind, elapsed)
	return nil
}

func (uc *usecase) Shutdown(ctx context.Context) error {
	uc.mu.Lock()
	uc.closed = true
	uc.mu.Unlock()

	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		uc.cancel()
		return nil
	case <-ctx.Done():
		uc.cancel()
		return ctx.Err()
	}
}

func (uc *usecase) updateStatus(ctx context.Context, deliveryID string, status model.DeliveryStatus, kind model.WorkflowKind, runErr error) {
	if uc.deps.Ledger == nil || deliveryID == "" {
		return
	}
	opt := repository.UpdateStatusOptions{
		ID:     deliveryID,
		Status: status,
		Action: string(kind),
	}
	if runErr != nil {
		opt.Error = runErr.Error()
	}
	if err := uc.deps.Ledger.UpdateStatus(ctx, opt); err != nil && !errors.Is(err, repository.ErrDeliveryNotFound) {
		uc.l.Warnf(ctx, "%s: ledger update %s -> %s: %v", LogPrefixDispatch, deliveryID, status, err)
	}
}

// newWorkspace reserves a run directory and tags ctx with the run id.
func (uc *usecase) newWorkspace(ctx context.Context, repo model.RepositoryReference) (context.Context, *agent.Workspace, error) {
	ws, err := agent.NewWorkspace(uc.cfg.RootDir, repo, uc.deps.Now())
	if err != nil {
		return ctx, nil, err
	}
	return pkgLog.WithRunID(ctx, ws.RunID), ws, nil
}

func (uc *usecase) cleanup(ctx context.Context, ws *agent.Workspace) {
	if err := ws.Cleanup(); err != nil {
		uc.l.Warnf(ctx, "%s: remove workspace %s: %v", LogPrefixRun, ws.LocalPath, err)
	}
}

// repoLock serializes work on the shared per-repository checkout.
func (uc *usecase) repoLock(key string) *sync.Mutex {
	mu, _ := uc.repoLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// tool invokes a registered capability directly, outside any LLM turn.
func (uc *usecase) tool(ctx context.Context, ws *agent.Workspace, c agent.Capability, params map[string]any) (map[string]any, error) {
	t, ok := uc.deps.Tools.Get(string(c))
	if !ok {
		return nil, fmt.Errorf("%w: %s", agent.ErrCapabilityNotRegistered, c)
	}
	res, err := t.Execute(ctx, ws, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c, err)
	}
	out, _ := res.(map[string]any)
	return out, nil
}

// resolveBranch returns the source branch argument, asking GitHub when the
// event did not carry it.
func (uc *usecase) resolveBranch(ctx context.Context, task model.WorkflowTask, prNumber int) (string, error) {
	if branch := task.Arguments[ArgSourceBranch]; branch != "" {
		return branch, nil
	}
	pr, err := uc.deps.GitHub.GetPullRequest(ctx, task.Repo, prNumber)
	if err != nil {
		return "", fmt.Errorf("resolve source branch of #%d: %w", prNumber, err)
	}
	if pr.SourceBranch == "" {
		return "", fmt.Errorf("%w: %s of #%d", ErrMissingArgument, ArgSourceBranch, prNumber)
	}
	return pr.SourceBranch, nil
}

func (uc *usecase) withMarker(body string) string {
	return uc.cfg.CommentMarker + "\n\n" + body
}
