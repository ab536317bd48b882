package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"repo-autobot/internal/model"
)

func (c *Client) GetPullRequest(ctx context.Context, repo model.RepositoryReference, number int) (model.PullRequestContext, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return model.PullRequestContext{}, fmt.Errorf("fetching %s#%d: %w", repo.FullPath(), number, err)
	}
	c.logRateLimit(ctx, resp, repo.FullPath()+"/pulls", 0, 1)
	return mapPullRequest(pr, repo), nil
}

// ListFiles returns the changed files of a pull request with their patches.
func (c *Client) ListFiles(ctx context.Context, repo model.RepositoryReference, number int) ([]model.FileDiff, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var out []model.FileDiff

	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files for %s#%d (page %d): %w", repo.FullPath(), number, opts.Page, err)
		}
		c.logRateLimit(ctx, resp, repo.FullPath()+"/pulls/files", opts.Page, len(files))

		for _, f := range files {
			out = append(out, model.FileDiff{
				Filename: f.GetFilename(),
				Status:   f.GetStatus(),
				Patch:    f.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) CreatePullRequest(ctx context.Context, repo model.RepositoryReference, req NewPullRequest) (CreatedPullRequest, error) {
	if req.Head == "" || req.Base == "" {
		return CreatedPullRequest{}, fmt.Errorf("%w: head and base are required", ErrInvalidInput)
	}
	pr, _, err := c.gh.PullRequests.Create(ctx, repo.Owner, repo.Name, &gh.NewPullRequest{
		Title: gh.Ptr(req.Title),
		Body:  gh.Ptr(req.Body),
		Head:  gh.Ptr(req.Head),
		Base:  gh.Ptr(req.Base),
	})
	if err != nil {
		return CreatedPullRequest{}, fmt.Errorf("creating pull request %s -> %s on %s: %w", req.Head, req.Base, repo.FullPath(), err)
	}
	c.l.Infof(ctx, "pkg.github.CreatePullRequest: opened %s#%d", repo.FullPath(), pr.GetNumber())
	return CreatedPullRequest{Number: pr.GetNumber(), URL: pr.GetHTMLURL()}, nil
}

// LinkIssue appends "Closes #issue" to the pull request body so GitHub
// closes the issue on merge. It is a no-op when the link already exists.
func (c *Client) LinkIssue(ctx context.Context, repo model.RepositoryReference, prNumber, issue int) error {
	pr, _, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, prNumber)
	if err != nil {
		return fmt.Errorf("fetching %s#%d: %w", repo.FullPath(), prNumber, err)
	}

	link := fmt.Sprintf(closesFmt, issue)
	body := pr.GetBody()
	if strings.Contains(body, link) {
		return nil
	}
	if body != "" {
		body += "\n\n"
	}
	body += link

	if _, _, err := c.gh.PullRequests.Edit(ctx, repo.Owner, repo.Name, prNumber, &gh.PullRequest{Body: gh.Ptr(body)}); err != nil {
		return fmt.Errorf("linking issue #%d to %s#%d: %w", issue, repo.FullPath(), prNumber, err)
	}
	return nil
}

func (c *Client) GetIssue(ctx context.Context, repo model.RepositoryReference, number int) (model.Issue, error) {
	issue, _, err := c.gh.Issues.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return model.Issue{}, fmt.Errorf("fetching issue %s#%d: %w", repo.FullPath(), number, err)
	}
	return model.Issue{Number: issue.GetNumber(), Title: issue.GetTitle(), Body: issue.GetBody()}, nil
}
