package github

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"repo-autobot/internal/model"
)

// ListComments returns every review comment and issue comment on a pull
// request, ordered by creation time.
func (c *Client) ListComments(ctx context.Context, repo model.RepositoryReference, number int) ([]model.Comment, error) {
	review, err := c.listReviewComments(ctx, repo, number)
	if err != nil {
		return nil, err
	}
	issue, err := c.listIssueComments(ctx, repo, number)
	if err != nil {
		return nil, err
	}

	all := make([]model.Comment, 0, len(review)+len(issue))
	all = append(all, review...)
	for _, ic := range issue {
		all = append(all, mapIssueComment(ic))
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

// GetReviewComments returns the inline comments attached to one review.
func (c *Client) GetReviewComments(ctx context.Context, repo model.RepositoryReference, number int, reviewID int64) ([]model.Comment, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var out []model.Comment

	for {
		comments, resp, err := c.gh.PullRequests.ListReviewComments(ctx, repo.Owner, repo.Name, number, reviewID, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments of review %d on %s#%d (page %d): %w", reviewID, repo.FullPath(), number, opts.Page, err)
		}
		c.logRateLimit(ctx, resp, repo.FullPath()+"/review-comments", opts.Page, len(comments))

		for _, rc := range comments {
			out = append(out, mapReviewComment(rc))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// CreateComment posts body on an issue or pull request and returns the new
// comment id.
func (c *Client) CreateComment(ctx context.Context, repo model.RepositoryReference, number int, body string) (int64, error) {
	ic, _, err := c.gh.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return 0, fmt.Errorf("creating comment on %s#%d: %w", repo.FullPath(), number, err)
	}
	return ic.GetID(), nil
}

func (c *Client) DeleteComment(ctx context.Context, repo model.RepositoryReference, commentID int64) error {
	if _, err := c.gh.Issues.DeleteComment(ctx, repo.Owner, repo.Name, commentID); err != nil {
		return fmt.Errorf("deleting comment %d on %s: %w", commentID, repo.FullPath(), err)
	}
	return nil
}

// DeleteMarkedComments removes the issue comments on number that the bot
// authored and whose body contains marker, and returns how many were deleted.
func (c *Client) DeleteMarkedComments(ctx context.Context, repo model.RepositoryReference, number int, marker string) (int, error) {
	if marker == "" {
		return 0, fmt.Errorf("%w: empty marker", ErrInvalidInput)
	}
	if c.botLogin == "" {
		return 0, fmt.Errorf("%w: bot login not configured", ErrInvalidInput)
	}
	comments, err := c.listIssueComments(ctx, repo, number)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, ic := range comments {
		if !strings.EqualFold(ic.GetUser().GetLogin(), c.botLogin) || !strings.Contains(ic.GetBody(), marker) {
			continue
		}
		if err := c.DeleteComment(ctx, repo, ic.GetID()); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (c *Client) listReviewComments(ctx context.Context, repo model.RepositoryReference, number int) ([]model.Comment, error) {
	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var out []model.Comment

	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing review comments for %s#%d (page %d): %w", repo.FullPath(), number, opts.Page, err)
		}
		c.logRateLimit(ctx, resp, repo.FullPath()+"/pulls/comments", opts.Page, len(comments))

		for _, rc := range comments {
			out = append(out, mapReviewComment(rc))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) listIssueComments(ctx context.Context, repo model.RepositoryReference, number int) ([]*gh.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var out []*gh.IssueComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s#%d (page %d): %w", repo.FullPath(), number, opts.Page, err)
		}
		c.logRateLimit(ctx, resp, repo.FullPath()+"/issues/comments", opts.Page, len(comments))

		out = append(out, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}
