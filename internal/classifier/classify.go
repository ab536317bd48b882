package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"repo-autobot/internal/model"
	"repo-autobot/internal/replychain"
)

// Classify maps a webhook event onto one Action, failing closed to NoOp.
func (c *eventClassifier) Classify(ctx context.Context, event model.WebhookEvent) Action {
	action := c.classify(ctx, event)
	if action.IsNoOp() {
		c.l.Infof(ctx, "%s: event=%s noop: %s", LogPrefixClassify, event.Header, action.Reason)
	} else {
		c.l.Infof(ctx, "%s: event=%s action=%s repo=%s", LogPrefixClassify, event.Header, action.Kind, action.Repo.FullPath())
	}
	return action
}

func (c *eventClassifier) classify(ctx context.Context, event model.WebhookEvent) Action {
	if event.Kind == model.EventUnknown {
		return NoOp(fmt.Sprintf("%s: %s", ReasonEventNotHandled, event.Header))
	}
	if len(event.Payload) == 0 {
		return malformed("empty body")
	}

	parsed, err := gh.ParseWebHook(string(event.Kind), event.Payload)
	if err != nil {
		return malformed(err.Error())
	}

	switch e := parsed.(type) {
	case *gh.PushEvent:
		return c.classifyPush(e, event.Payload)
	case *gh.PullRequestEvent:
		return c.classifyPullRequest(e)
	case *gh.IssuesEvent:
		return c.classifyIssue(e)
	case *gh.IssueCommentEvent:
		return c.classifyIssueComment(ctx, e)
	case *gh.PullRequestReviewEvent:
		return c.classifyReview(ctx, e)
	default:
		return NoOp(fmt.Sprintf("%s: %s", ReasonEventNotHandled, event.Header))
	}
}

// pushExtras holds the pull_request object some push payloads carry, which
// go-github's PushEvent does not model.
type pushExtras struct {
	PullRequest *gh.PullRequest `json:"pull_request"`
}

func (c *eventClassifier) classifyPush(e *gh.PushEvent, raw []byte) Action {
	repo := model.RepositoryReference{
		Owner: e.GetRepo().GetOwner().GetLogin(),
		Name:  e.GetRepo().GetName(),
	}
	if repo.Owner == "" {
		// Push payloads sometimes only carry owner.name.
		repo.Owner = e.GetRepo().GetOwner().GetName()
	}
	if repo.IsZero() {
		return malformed("missing repository")
	}
	if !strings.HasPrefix(e.GetRef(), branchRefPrefix) {
		return malformed("missing branch ref")
	}
	if e.GetDeleted() {
		return NoOp(ReasonBranchDeleted)
	}

	relevant := 0
	for _, commit := range e.Commits {
		if c.isBot(commit.GetAuthor().GetLogin()) {
			continue
		}
		relevant++
	}
	if relevant == 0 {
		if len(e.Commits) > 0 {
			return NoOp(ReasonBotAuthor)
		}
		return NoOp(ReasonNoRelevantCommits)
	}

	defaultBranch := e.GetRepo().GetDefaultBranch()
	if defaultBranch == "" {
		defaultBranch = DefaultBranchFallback
	}
	branch := strings.TrimPrefix(e.GetRef(), branchRefPrefix)
	if branch == defaultBranch {
		return Action{Kind: ActionMainCommitIngested, Repo: repo}
	}

	var extras pushExtras
	if err := json.Unmarshal(raw, &extras); err != nil {
		return malformed(err.Error())
	}
	pr := extras.PullRequest
	if pr == nil {
		return NoOp(ReasonNotMainOrReadyPR)
	}
	prCtx := pullRequestContext(pr, repo)
	if !prCtx.Mutable() || prCtx.IsMerged {
		return NoOp(ReasonPullRequestNotReady)
	}
	if c.isBot(prCtx.AuthorLogin) {
		return NoOp(ReasonBotAuthor)
	}
	if prCtx.SourceBranch == "" {
		prCtx.SourceBranch = branch
	}
	return Action{Kind: ActionPullRequestUpdated, Repo: repo, PullRequest: &prCtx}
}

var pullRequestActions = map[string]bool{
	"opened":           true,
	"ready_for_review": true,
	"synchronize":      true,
	"reopened":         true,
}

func (c *eventClassifier) classifyPullRequest(e *gh.PullRequestEvent) Action {
	repo, ok := repositoryOf(e.GetRepo())
	if !ok || e.PullRequest == nil {
		return malformed("missing repository or pull_request")
	}
	if !pullRequestActions[e.GetAction()] {
		return NoOp(fmt.Sprintf("%s: pull_request %s", ReasonActionNotHandled, e.GetAction()))
	}
	if c.isBot(e.GetPullRequest().GetUser().GetLogin()) {
		return NoOp(ReasonBotAuthor)
	}
	if e.GetAction() == "synchronize" && c.isBot(e.GetSender().GetLogin()) {
		return NoOp(ReasonBotAuthor)
	}

	prCtx := pullRequestContext(e.PullRequest, repo)
	if !prCtx.Mutable() {
		return NoOp(ReasonPullRequestNotReady)
	}
	if prCtx.Number == 0 {
		return malformed("missing pull request number")
	}
	return Action{Kind: ActionPullRequestUpdated, Repo: repo, PullRequest: &prCtx}
}

func (c *eventClassifier) classifyIssue(e *gh.IssuesEvent) Action {
	repo, ok := repositoryOf(e.GetRepo())
	if !ok || e.Issue == nil {
		return malformed("missing repository or issue")
	}
	if e.GetAction() != "opened" {
		return NoOp(fmt.Sprintf("%s: issues %s", ReasonActionNotHandled, e.GetAction()))
	}
	if e.Issue.IsPullRequest() {
		return NoOp(ReasonIssueIsPullRequest)
	}
	if c.isBot(e.GetIssue().GetUser().GetLogin()) {
		return NoOp(ReasonBotAuthor)
	}
	if e.GetIssue().GetNumber() == 0 {
		return malformed("missing issue number")
	}

	return Action{
		Kind: ActionIssueOpened,
		Repo: repo,
		Issue: &model.Issue{
			Number: e.GetIssue().GetNumber(),
			Title:  e.GetIssue().GetTitle(),
			Body:   e.GetIssue().GetBody(),
		},
	}
}

func (c *eventClassifier) classifyIssueComment(ctx context.Context, e *gh.IssueCommentEvent) Action {
	repo, ok := repositoryOf(e.GetRepo())
	if !ok || e.Issue == nil || e.Comment == nil {
		return malformed("missing repository, issue or comment")
	}
	if e.GetAction() != "created" {
		return NoOp(fmt.Sprintf("%s: issue_comment %s", ReasonActionNotHandled, e.GetAction()))
	}
	if !e.Issue.IsPullRequest() {
		return NoOp(ReasonNotOnPullRequest)
	}
	if c.isBot(e.GetComment().GetUser().GetLogin()) {
		return NoOp(ReasonBotAuthor)
	}
	if e.GetIssue().GetState() != string(model.PullRequestOpen) {
		return NoOp(ReasonPullRequestNotReady)
	}
	if !c.hasTrigger(e.GetComment().GetBody()) {
		return NoOp(ReasonMissingTrigger)
	}

	trigger := model.Comment{
		ID:          e.GetComment().GetID(),
		Body:        e.GetComment().GetBody(),
		AuthorLogin: e.GetComment().GetUser().GetLogin(),
		CreatedAt:   e.GetComment().GetCreatedAt().Time,
	}
	prCtx := model.PullRequestContext{
		Number:      e.GetIssue().GetNumber(),
		State:       model.PullRequestOpen,
		AuthorLogin: e.GetIssue().GetUser().GetLogin(),
		Repo:        repo,
	}

	return Action{
		Kind:        ActionSupportRequested,
		Repo:        repo,
		PullRequest: &prCtx,
		Comment:     &trigger,
		Chain:       c.resolveChain(ctx, repo, prCtx.Number, trigger),
	}
}

// resolveChain rebuilds the thread ending at trigger. Listing failures
// degrade to a chain holding only the trigger comment.
func (c *eventClassifier) resolveChain(ctx context.Context, repo model.RepositoryReference, number int, trigger model.Comment) model.ReplyChain {
	comments := []model.Comment{trigger}
	if c.source != nil {
		listed, err := c.source.ListComments(ctx, repo, number)
		if err != nil {
			c.l.Warnf(ctx, "%s: list comments for %s#%d: %v", LogPrefixClassify, repo.FullPath(), number, err)
		} else {
			comments = append(comments, listed...)
		}
	}
	return replychain.Resolve(comments, trigger.ID)
}

func (c *eventClassifier) classifyReview(ctx context.Context, e *gh.PullRequestReviewEvent) Action {
	repo, ok := repositoryOf(e.GetRepo())
	if !ok || e.Review == nil || e.PullRequest == nil {
		return malformed("missing repository, review or pull_request")
	}
	if e.GetAction() != "submitted" {
		return NoOp(fmt.Sprintf("%s: pull_request_review %s", ReasonActionNotHandled, e.GetAction()))
	}
	if c.isBot(e.GetReview().GetUser().GetLogin()) {
		return NoOp(ReasonBotAuthor)
	}
	if !c.hasTrigger(e.GetReview().GetBody()) {
		return NoOp(ReasonMissingTrigger)
	}
	prCtx := pullRequestContext(e.PullRequest, repo)
	if prCtx.State != model.PullRequestOpen {
		return NoOp(ReasonPullRequestNotReady)
	}
	if c.source == nil {
		return NoOp(ReasonReviewUnavailable)
	}

	review := model.Review{
		ID:          e.GetReview().GetID(),
		Body:        e.GetReview().GetBody(),
		AuthorLogin: e.GetReview().GetUser().GetLogin(),
		State:       e.GetReview().GetState(),
	}
	comments, err := c.source.GetReviewComments(ctx, repo, prCtx.Number, review.ID)
	if err != nil {
		return NoOp(fmt.Sprintf("%s: %v", ReasonReviewUnavailable, err))
	}

	return Action{
		Kind:           ActionReviewRequested,
		Repo:           repo,
		PullRequest:    &prCtx,
		Review:         &review,
		ReviewComments: comments,
	}
}

func (c *eventClassifier) isBot(login string) bool {
	return login != "" && strings.EqualFold(login, c.cfg.BotLogin)
}

func (c *eventClassifier) hasTrigger(body string) bool {
	return c.cfg.TriggerToken != "" && strings.HasPrefix(strings.TrimSpace(body), c.cfg.TriggerToken)
}

func repositoryOf(r *gh.Repository) (model.RepositoryReference, bool) {
	ref := model.RepositoryReference{
		Owner: r.GetOwner().GetLogin(),
		Name:  r.GetName(),
	}
	return ref, !ref.IsZero()
}

func pullRequestContext(pr *gh.PullRequest, repo model.RepositoryReference) model.PullRequestContext {
	state := model.PullRequestClosed
	if pr.GetState() == string(model.PullRequestOpen) {
		state = model.PullRequestOpen
	}
	return model.PullRequestContext{
		Number:       pr.GetNumber(),
		State:        state,
		IsDraft:      pr.GetDraft(),
		IsMerged:     pr.GetMerged(),
		SourceBranch: pr.GetHead().GetRef(),
		AuthorLogin:  pr.GetUser().GetLogin(),
		Repo:         repo,
	}
}

func malformed(detail string) Action {
	return NoOp(fmt.Sprintf("%s: %s", ReasonMalformedPayload, detail))
}
