package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"repo-autobot/internal/agent/orchestrator"
	"repo-autobot/internal/agent/tools"
	"repo-autobot/internal/knowledge"
	"repo-autobot/internal/ledger/repository"
	"repo-autobot/internal/model"
	pkgGit "repo-autobot/pkg/git"
	"repo-autobot/pkg/github"
	"repo-autobot/pkg/llmprovider"
	pkgLog "repo-autobot/pkg/log"
)

const testMarker = "This comment is written and managed by a bot. Do not edit."

var testRepo = model.RepositoryReference{Owner: "acme", Name: "widgets"}

func text(t string) *llmprovider.Response {
	return &llmprovider.Response{Content: llmprovider.Message{Role: llmprovider.RoleAssistant, Parts: []llmprovider.Part{{Text: t}}}}
}

// fakeLLM answers supervisor requests from routes, worker requests with
// answer and tool-less requests (the review) with review.
type fakeLLM struct {
	mu        sync.Mutex
	routes    []string
	answer    string
	review    string
	reviewErr error
	requests  []*llmprovider.Request
}

func (f *fakeLLM) GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	for _, t := range req.Tools {
		if t.Name == "route" {
			next := string(orchestrator.NodeFinish)
			if len(f.routes) > 0 {
				next, f.routes = f.routes[0], f.routes[1:]
			}
			return text(`{"next": "` + next + `"}`), nil
		}
	}
	if len(req.Tools) == 0 {
		if f.reviewErr != nil {
			return nil, f.reviewErr
		}
		return text(f.review), nil
	}
	return text(f.answer), nil
}

func (f *fakeLLM) systemPrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if r.SystemInstruction != nil && len(r.SystemInstruction.Parts) > 0 {
			out = append(out, r.SystemInstruction.Parts[0].Text)
		}
	}
	return out
}

type fakeGitHub struct {
	mu       sync.Mutex
	pr       model.PullRequestContext
	prErr    error
	files    []model.FileDiff
	issues   []model.Issue
	comments []string
	markers  []string
	getPR    int
	created  []github.NewPullRequest
}

func (f *fakeGitHub) GetPullRequest(ctx context.Context, repo model.RepositoryReference, number int) (model.PullRequestContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getPR++
	return f.pr, f.prErr
}

func (f *fakeGitHub) ListFiles(ctx context.Context, repo model.RepositoryReference, number int) ([]model.FileDiff, error) {
	return f.files, nil
}

func (f *fakeGitHub) FetchLinkedIssues(ctx context.Context, repo model.RepositoryReference, prNumber int) ([]model.Issue, error) {
	return f.issues, nil
}

func (f *fakeGitHub) CreateComment(ctx context.Context, repo model.RepositoryReference, number int, body string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, body)
	return int64(len(f.comments)), nil
}

func (f *fakeGitHub) DeleteMarkedComments(ctx context.Context, repo model.RepositoryReference, number int, marker string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers = append(f.markers, marker)
	return 1, nil
}

func (f *fakeGitHub) CreatePullRequest(ctx context.Context, repo model.RepositoryReference, req github.NewPullRequest) (github.CreatedPullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return github.CreatedPullRequest{Number: 99}, nil
}

func (f *fakeGitHub) LinkIssue(ctx context.Context, repo model.RepositoryReference, prNumber, issue int) error {
	return nil
}

type cloneCall struct {
	dir    string
	branch string
}

// fakeGit writes files into every clone target so collection has input.
type fakeGit struct {
	mu        sync.Mutex
	files     map[string]string
	cloneErr  error
	clones    []cloneCall
	current   string
	checkouts []string
	changed   bool
	formatErr error
	formatted []string
	pushed    []string
}

func (g *fakeGit) Clone(ctx context.Context, repo model.RepositoryReference, dir, branch string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clones = append(g.clones, cloneCall{dir: dir, branch: branch})
	if g.cloneErr != nil {
		return g.cloneErr
	}
	for name, content := range g.files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	g.current = branch
	if g.current == "" {
		g.current = "main"
	}
	return nil
}

func (g *fakeGit) Checkout(ctx context.Context, dir, branch string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkouts = append(g.checkouts, branch)
	g.current = branch
	return nil
}

func (g *fakeGit) CurrentBranch(ctx context.Context, dir string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, nil
}

func (g *fakeGit) HasChanges(ctx context.Context, dir string) (bool, error) {
	return g.changed, nil
}

func (g *fakeGit) CommitAndPush(ctx context.Context, dir, branch, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.changed {
		return pkgGit.ErrNothingToCommit
	}
	g.pushed = append(g.pushed, branch)
	return nil
}

func (g *fakeGit) CreateBranchAndPush(ctx context.Context, dir, branch, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pushed = append(g.pushed, branch)
	return nil
}

func (g *fakeGit) Format(ctx context.Context, dir string, files []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.formatErr != nil {
		return g.formatErr
	}
	g.formatted = append(g.formatted, files...)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	calls   []string
	docs    []knowledge.Document
	results []knowledge.Result
	queries []string
}

func (s *fakeStore) Upsert(ctx context.Context, repoKey string, docs []knowledge.Document) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "upsert:"+repoKey)
	s.docs = append(s.docs, docs...)
	return len(docs), nil
}

func (s *fakeStore) Query(ctx context.Context, repoKey, text string, limit int) ([]knowledge.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, text)
	return s.results, nil
}

func (s *fakeStore) DeleteRepository(ctx context.Context, repoKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete:"+repoKey)
	return nil
}

type fakeLedger struct {
	mu      sync.Mutex
	updates []repository.UpdateStatusOptions
}

func (l *fakeLedger) UpdateStatus(ctx context.Context, opt repository.UpdateStatusOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, opt)
	return nil
}

type fixture struct {
	gh     *fakeGitHub
	git    *fakeGit
	llm    *fakeLLM
	store  *fakeStore
	ledger *fakeLedger
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		gh:     &fakeGitHub{},
		git:    &fakeGit{},
		llm:    &fakeLLM{answer: "done"},
		store:  &fakeStore{},
		ledger: &fakeLedger{},
		root:   t.TempDir(),
	}
}

func (f *fixture) useCase(t *testing.T) *usecase {
	t.Helper()
	var store knowledge.Store
	if f.store != nil {
		store = f.store
	}
	validTypes := []string{"go", "py", "md"}
	registry, err := tools.NewRegistry(tools.Deps{
		Git:            f.git,
		PullRequests:   f.gh,
		Knowledge:      store,
		ValidFileTypes: validTypes,
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	l := pkgLog.NewNop()
	return New(Deps{
		Engine:    orchestrator.New(orchestrator.Config{MaxSteps: 20}, l),
		LLM:       f.llm,
		Tools:     registry,
		GitHub:    f.gh,
		Git:       f.git,
		Knowledge: store,
		Ledger:    f.ledger,
	}, Config{
		RootDir:        f.root,
		CommentMarker:  testMarker,
		ValidFileTypes: validTypes,
	}, l).(*usecase)
}

// workspaceDirs lists run directories left under root.
func (f *fixture) workspaceDirs(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var out []string
	for _, e := range entries {
		if e.Name() != ingestDir {
			out = append(out, e.Name())
		}
	}
	return out
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

var errBoom = errors.New("boom")
