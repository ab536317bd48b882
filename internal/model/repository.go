package model

import (
	"fmt"
	"strings"
)

// RepositoryReference identifies a repository by owner and name.
type RepositoryReference struct {
	Owner string
	Name  string
}

// FullPath returns "owner/name".
func (r RepositoryReference) FullPath() string {
	return r.Owner + "/" + r.Name
}

// Key returns "owner-name", used for knowledge-store partitioning and local paths.
func (r RepositoryReference) Key() string {
	return r.Owner + "-" + r.Name
}

func (r RepositoryReference) IsZero() bool {
	return r.Owner == "" || r.Name == ""
}

// ParseRepository parses "owner/name".
func ParseRepository(fullPath string) (RepositoryReference, error) {
	parts := strings.SplitN(fullPath, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryReference{}, fmt.Errorf("invalid repository %q: expected owner/name", fullPath)
	}
	return RepositoryReference{Owner: parts[0], Name: parts[1]}, nil
}

type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
)

// PullRequestContext is the subset of a pull request the automation acts on.
type PullRequestContext struct {
	Number       int
	State        PullRequestState
	IsDraft      bool
	IsMerged     bool
	SourceBranch string
	AuthorLogin  string
	Repo         RepositoryReference
}

// Mutable reports whether actions that write to the pull request are allowed.
func (pr PullRequestContext) Mutable() bool {
	return pr.State == PullRequestOpen && !pr.IsDraft
}
