package github

import (
	"context"
	"time"

	gh "github.com/google/go-github/v82/github"

	"repo-autobot/internal/model"
)

func mapReviewComment(c *gh.PullRequestComment) model.Comment {
	var inReplyTo *int64
	if c.InReplyTo != nil {
		val := c.GetInReplyTo()
		inReplyTo = &val
	}
	return model.Comment{
		ID:          c.GetID(),
		Body:        c.GetBody(),
		AuthorLogin: c.GetUser().GetLogin(),
		InReplyToID: inReplyTo,
		ReviewID:    c.GetPullRequestReviewID(),
		Path:        c.GetPath(),
		DiffHunk:    c.GetDiffHunk(),
		CreatedAt:   c.GetCreatedAt().Time,
	}
}

// Issue comments carry no reply pointer; each is its own thread root.
func mapIssueComment(c *gh.IssueComment) model.Comment {
	return model.Comment{
		ID:          c.GetID(),
		Body:        c.GetBody(),
		AuthorLogin: c.GetUser().GetLogin(),
		CreatedAt:   c.GetCreatedAt().Time,
	}
}

func mapPullRequest(pr *gh.PullRequest, repo model.RepositoryReference) model.PullRequestContext {
	state := model.PullRequestOpen
	if pr.GetState() == string(model.PullRequestClosed) {
		state = model.PullRequestClosed
	}
	return model.PullRequestContext{
		Number:       pr.GetNumber(),
		State:        state,
		IsDraft:      pr.GetDraft(),
		IsMerged:     pr.GetMerged() || !pr.GetMergedAt().IsZero(),
		SourceBranch: pr.GetHead().GetRef(),
		AuthorLogin:  pr.GetUser().GetLogin(),
		Repo:         repo,
	}
}

func (c *Client) logRateLimit(ctx context.Context, resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}
	c.l.Debugf(ctx, "pkg.github: endpoint=%s page=%d count=%d rate_remaining=%d rate_limit=%d",
		endpoint, page, count, resp.Rate.Remaining, resp.Rate.Limit)
	if resp.Rate.Limit > 0 && resp.Rate.Remaining < lowRateLimit {
		c.l.Warnf(ctx, "pkg.github: rate limit low, remaining=%d reset_in=%s",
			resp.Rate.Remaining, time.Until(resp.Rate.Reset.Time).Round(time.Second))
	}
}
