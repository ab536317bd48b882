package git

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"repo-autobot/internal/model"
)

// Clone clones repo into dir, or reuses dir when it already holds a working
// copy. branch may be empty for the remote default.
func (c *Client) Clone(ctx context.Context, repo model.RepositoryReference, dir, branch string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		c.l.Infof(ctx, "pkg.git.Clone: reusing working copy at %s", dir)
		if _, err := c.remote(ctx, dir, "fetch", "origin"); err != nil {
			return err
		}
		if branch != "" {
			return c.Checkout(ctx, dir, branch)
		}
		return nil
	}

	remote, err := c.remoteURL(repo)
	if err != nil {
		return err
	}
	args := []string{"clone"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, remote, dir)

	c.l.Infof(ctx, "pkg.git.Clone: cloning %s into %s", repo.FullPath(), dir)
	if _, err := c.remote(ctx, "", args...); err != nil {
		return err
	}
	return nil
}

// Checkout switches dir to branch and fast-forwards it from origin.
func (c *Client) Checkout(ctx context.Context, dir, branch string) error {
	if err := validBranch(branch); err != nil {
		return err
	}
	if _, err := c.remote(ctx, dir, "fetch", "origin", branch); err != nil {
		return err
	}
	if _, err := c.git(ctx, dir, "checkout", branch); err != nil {
		return err
	}
	_, err := c.remote(ctx, dir, "pull", "--ff-only", "origin", branch)
	return err
}

// CurrentBranch returns the checked out branch of dir.
func (c *Client) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return c.git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// HasChanges reports whether dir has uncommitted or untracked changes.
func (c *Client) HasChanges(ctx context.Context, dir string) (bool, error) {
	out, err := c.git(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAndPush commits every change in dir and pushes branch to origin.
func (c *Client) CommitAndPush(ctx context.Context, dir, branch, message string) error {
	if err := validBranch(branch); err != nil {
		return err
	}
	if err := c.commitAll(ctx, dir, message); err != nil {
		return err
	}
	c.l.Infof(ctx, "pkg.git.CommitAndPush: pushing %s", branch)
	_, err := c.remote(ctx, dir, "push", "origin", branch+":"+branch)
	return err
}

// CreateBranchAndPush creates branch from HEAD, commits every change and
// pushes it with upstream tracking.
func (c *Client) CreateBranchAndPush(ctx context.Context, dir, branch, message string) error {
	if err := validBranch(branch); err != nil {
		return err
	}
	if _, err := c.git(ctx, dir, "checkout", "-b", branch); err != nil {
		return err
	}
	if err := c.commitAll(ctx, dir, message); err != nil {
		return err
	}
	c.l.Infof(ctx, "pkg.git.CreateBranchAndPush: pushing new branch %s", branch)
	_, err := c.remote(ctx, dir, "push", "-u", "origin", branch)
	return err
}

// Format runs the configured formatter over files, which are relative to
// dir.
func (c *Client) Format(ctx context.Context, dir string, files []string) error {
	if len(c.cfg.Formatter) == 0 {
		return ErrNoFormatter
	}
	if len(files) == 0 {
		return nil
	}
	args := append(append([]string{}, c.cfg.Formatter[1:]...), files...)
	if _, err := c.run.Run(ctx, dir, c.cfg.Formatter[0], args...); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}

// BranchNameForIssue returns autocode/github-issue-<n>-<timestamp>.
func BranchNameForIssue(issue int, now time.Time) string {
	return fmt.Sprintf(issueBranchFmt, issue, now.UTC().Format(branchTimeLayout))
}

func (c *Client) commitAll(ctx context.Context, dir, message string) error {
	if _, err := c.git(ctx, dir, "add", "-A"); err != nil {
		return err
	}
	changed, err := c.HasChanges(ctx, dir)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNothingToCommit
	}
	_, err = c.git(ctx, dir,
		"-c", "user.name="+c.cfg.AuthorName,
		"-c", "user.email="+c.cfg.AuthorEmail,
		"commit", "-m", message)
	return err
}

func (c *Client) git(ctx context.Context, dir string, args ...string) (string, error) {
	return c.run.Run(ctx, dir, c.cfg.Binary, args...)
}

// remote runs a git command that talks to origin. The token travels in a
// per-command header and is never written to .git/config.
func (c *Client) remote(ctx context.Context, dir string, args ...string) (string, error) {
	if c.cfg.Token != "" && strings.HasPrefix(c.cfg.CloneURL, "https://") {
		args = append([]string{"-c", "http.extraheader=" + authHeader(c.cfg.Token)}, args...)
	}
	return c.git(ctx, dir, args...)
}

func authHeader(token string) string {
	return "AUTHORIZATION: basic " + basicCredentials(token)
}

func basicCredentials(token string) string {
	return base64.StdEncoding.EncodeToString([]byte(tokenUser + ":" + token))
}

// remoteURL builds the anonymous HTTPS clone URL.
func (c *Client) remoteURL(repo model.RepositoryReference) (string, error) {
	u, err := url.Parse(c.cfg.CloneURL + "/" + repo.FullPath() + ".git")
	if err != nil {
		return "", fmt.Errorf("invalid clone URL: %w", err)
	}
	return u.String(), nil
}

func validBranch(branch string) error {
	if branch == "" || strings.HasPrefix(branch, "-") || strings.Contains(branch, "..") || strings.ContainsAny(branch, " ~^:?*[\\") {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, branch)
	}
	return nil
}

// IsNothingToCommit reports whether err means the tree had no changes.
func IsNothingToCommit(err error) bool {
	return errors.Is(err, ErrNothingToCommit)
}
