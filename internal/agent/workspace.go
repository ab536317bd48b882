package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"repo-autobot/internal/model"
)

const (
	workspaceTimeLayout  = "20060102150405"
	maxWorkspaceSuffixes = 1000
	workspaceDirPerm     = 0o755
	gitDir               = ".git"
)

// Workspace is the working context of one orchestration run. It is passed
// explicitly to every tool and owned by a single run.
type Workspace struct {
	RunID         string
	Repo          model.RepositoryReference
	LocalPath     string
	Branch        string
	DefaultBranch string

	// Set once the repository has been cloned into LocalPath.
	Ready bool
}

// NewWorkspace reserves an exclusive directory under rootDir named
// owner-name-YYYYMMDDHHMMSS, adding a -n suffix when that name is taken.
// The directory is created empty so a clone can target it.
func NewWorkspace(rootDir string, repo model.RepositoryReference, now time.Time) (*Workspace, error) {
	if repo.IsZero() {
		return nil, fmt.Errorf("new workspace: empty repository reference")
	}
	if err := os.MkdirAll(rootDir, workspaceDirPerm); err != nil {
		return nil, fmt.Errorf("new workspace: %w", err)
	}

	base := filepath.Join(rootDir, repo.Key()+"-"+now.UTC().Format(workspaceTimeLayout))
	for n := 0; n < maxWorkspaceSuffixes; n++ {
		path := base
		if n > 0 {
			path = fmt.Sprintf("%s-%d", base, n)
		}
		err := os.Mkdir(path, workspaceDirPerm)
		if err == nil {
			return &Workspace{
				RunID:     uuid.NewString(),
				Repo:      repo,
				LocalPath: path,
			}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("new workspace: %w", err)
		}
	}
	return nil, fmt.Errorf("new workspace: no free directory for %s", base)
}

// Resolve maps a repository-relative path into LocalPath. Absolute paths,
// any ".." or ".git" segment, and paths whose symlinks lead outside
// LocalPath are rejected.
func (w *Workspace) Resolve(rel string) (string, error) {
	if w == nil || w.LocalPath == "" {
		return "", ErrWorkspaceNotReady
	}
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsafePath)
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return "", fmt.Errorf("%w: absolute path %q", ErrUnsafePath, rel)
	}
	for _, seg := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q escapes the workspace", ErrUnsafePath, rel)
		}
		if strings.EqualFold(seg, gitDir) {
			return "", fmt.Errorf("%w: %q is inside %s", ErrUnsafePath, rel, gitDir)
		}
	}

	abs := filepath.Join(w.LocalPath, filepath.Clean(rel))
	root, err := realPath(w.LocalPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWorkspaceNotReady, err)
	}
	target, err := realPath(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsafePath, rel, err)
	}
	if !within(root, target) {
		return "", fmt.Errorf("%w: %q links outside the workspace", ErrUnsafePath, rel)
	}
	return abs, nil
}

// realPath resolves the symlinks of the longest existing prefix of p and
// appends the part that does not exist yet. A dangling link is an error.
func realPath(p string) (string, error) {
	existing, rest := p, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, rest), nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Rel converts an absolute path inside LocalPath back to a relative one.
func (w *Workspace) Rel(abs string) string {
	rel, err := filepath.Rel(w.LocalPath, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Cleanup removes the workspace directory.
func (w *Workspace) Cleanup() error {
	if w == nil || w.LocalPath == "" {
		return nil
	}
	return os.RemoveAll(w.LocalPath)
}
