package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/knowledge"
	"repo-autobot/internal/model"
	pkgGit "repo-autobot/pkg/git"
	"repo-autobot/pkg/llmprovider"
)

// reviewAndBeautify reviews the pull request against its linked issues and
// then formats the files it changed. The formatting pass runs even when the
// review could not be posted.
func (uc *usecase) reviewAndBeautify(ctx context.Context, task model.WorkflowTask) error {
	prNumber, err := intArg(task, ArgPRNumber)
	if err != nil {
		return err
	}
	branch, err := uc.resolveBranch(ctx, task, prNumber)
	if err != nil {
		return err
	}
	files, err := uc.deps.GitHub.ListFiles(ctx, task.Repo, prNumber)
	if err != nil {
		return fmt.Errorf("list files of #%d: %w", prNumber, err)
	}

	reviewErr := uc.review(ctx, task.Repo, prNumber, files)
	if reviewErr != nil {
		uc.l.Errorf(ctx, "%s: review of #%d: %v", LogPrefixReview, prNumber, reviewErr)
	}
	beautifyErr := uc.beautify(ctx, task.Repo, prNumber, branch, files)
	return errors.Join(reviewErr, beautifyErr)
}

func (uc *usecase) review(ctx context.Context, repo model.RepositoryReference, prNumber int, files []model.FileDiff) error {
	deleted, err := uc.deps.GitHub.DeleteMarkedComments(ctx, repo, prNumber, uc.cfg.CommentMarker)
	if err != nil {
		return fmt.Errorf("delete bot comments: %w", err)
	}
	if deleted > 0 {
		uc.l.Infof(ctx, "%s: deleted %d earlier bot comments on #%d", LogPrefixReview, deleted, prNumber)
	}

	issues, err := uc.deps.GitHub.FetchLinkedIssues(ctx, repo, prNumber)
	if err != nil {
		return fmt.Errorf("fetch linked issues: %w", err)
	}
	if len(issues) == 0 {
		uc.l.Infof(ctx, "%s: #%d has no linked issues", LogPrefixReview, prNumber)
		if _, err := uc.deps.GitHub.CreateComment(ctx, repo, prNumber, uc.cfg.CommentMarker+"\n"+MsgNoLinkedIssues); err != nil {
			return fmt.Errorf("post no-issues comment: %w", err)
		}
		return nil
	}

	issueText := renderIssues(issues)
	related := uc.relatedCode(ctx, repo, issueText)

	resp, err := uc.deps.LLM.GenerateContent(ctx, &llmprovider.Request{
		SystemInstruction: llmprovider.SystemText(PromptReviewSystem),
		Messages: []llmprovider.Message{
			llmprovider.UserText(fmt.Sprintf(PromptReview, renderDiffs(files), issueText, related)),
		},
		Temperature: reviewTemperature,
	})
	if err != nil {
		return fmt.Errorf("generate review: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fmt.Errorf("generate review: empty response")
	}

	if _, err := uc.deps.GitHub.CreateComment(ctx, repo, prNumber, uc.withMarker(text)); err != nil {
		return fmt.Errorf("post review: %w", err)
	}
	return nil
}

// relatedCode looks up repository snippets for the issue text. Lookup
// failures only cost the review its context.
func (uc *usecase) relatedCode(ctx context.Context, repo model.RepositoryReference, query string) string {
	if uc.deps.Knowledge == nil {
		return ""
	}
	results, err := uc.deps.Knowledge.Query(ctx, repo.Key(), query, uc.cfg.KnowledgeLimit)
	if err != nil {
		uc.l.Warnf(ctx, "%s: knowledge query for %s: %v", LogPrefixReview, repo.Key(), err)
		return ""
	}
	return knowledge.Format(results)
}

// beautify formats the changed files on the source branch and pushes the
// result as the bot when anything changed.
func (uc *usecase) beautify(ctx context.Context, repo model.RepositoryReference, prNumber int, branch string, files []model.FileDiff) error {
	paths := make([]any, 0, len(files))
	for _, f := range files {
		if f.Status == "removed" {
			continue
		}
		paths = append(paths, f.Filename)
	}
	if len(paths) == 0 {
		return nil
	}

	ctx, ws, err := uc.newWorkspace(ctx, repo)
	if err != nil {
		return fmt.Errorf("beautify #%d: %w", prNumber, err)
	}
	defer uc.cleanup(ctx, ws)

	if _, err := uc.tool(ctx, ws, agent.CapCloneRepository, map[string]any{"branch": branch}); err != nil {
		return fmt.Errorf("beautify #%d: %w", prNumber, err)
	}
	_, err = uc.tool(ctx, ws, agent.CapFormatFiles, map[string]any{"files": paths})
	if errors.Is(err, pkgGit.ErrNoFormatter) {
		uc.l.Infof(ctx, "%s: no formatter configured, skipping #%d", LogPrefixReview, prNumber)
		return nil
	}
	if err != nil {
		return fmt.Errorf("beautify #%d: %w", prNumber, err)
	}

	res, err := uc.tool(ctx, ws, agent.CapCommitAndPush, map[string]any{"message": fmt.Sprintf(MsgBeautifyCommit, prNumber)})
	if err != nil {
		return fmt.Errorf("beautify #%d: %w", prNumber, err)
	}
	uc.l.Infof(ctx, "%s: #%d formatted on %s, pushed=%v", LogPrefixReview, prNumber, branch, res["pushed"])
	return nil
}

func renderIssues(issues []model.Issue) string {
	var b strings.Builder
	for _, is := range issues {
		fmt.Fprintf(&b, "#%d %s\n%s\n\n", is.Number, is.Title, is.Body)
	}
	return b.String()
}
