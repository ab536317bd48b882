package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"repo-autobot/internal/model"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type linkedIssuesResponse struct {
	Data struct {
		Repository struct {
			PullRequest struct {
				ClosingIssuesReferences struct {
					Nodes []struct {
						Number int    `json:"number"`
						Title  string `json:"title"`
						Body   string `json:"body"`
					} `json:"nodes"`
				} `json:"closingIssuesReferences"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchLinkedIssues returns the issues a pull request will close on merge.
func (c *Client) FetchLinkedIssues(ctx context.Context, repo model.RepositoryReference, prNumber int) ([]model.Issue, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: linkedIssuesQuery,
		Variables: map[string]any{
			"owner": repo.Owner,
			"repo":  repo.Name,
			"pr":    prNumber,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request for %s#%d: %w", repo.FullPath(), prNumber, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGraphQL, resp.StatusCode)
	}

	var out linkedIssuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, out.Errors[0].Message)
	}

	nodes := out.Data.Repository.PullRequest.ClosingIssuesReferences.Nodes
	issues := make([]model.Issue, 0, len(nodes))
	for _, n := range nodes {
		issues = append(issues, model.Issue{Number: n.Number, Title: n.Title, Body: n.Body})
	}
	return issues, nil
}
