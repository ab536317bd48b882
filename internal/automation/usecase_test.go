package automation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"repo-autobot/internal/agent/orchestrator"
	"repo-autobot/internal/classifier"
	"repo-autobot/internal/model"
)

func shutdown(t *testing.T, uc UseCase) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := uc.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestDispatch_NoOp(t *testing.T) {
	f := newFixture(t)
	uc := f.useCase(t)

	kind, started, err := uc.Dispatch(context.Background(), "d-1", classifier.NoOp("nothing to do"))
	if err != nil || started || kind != "" {
		t.Fatalf("Dispatch() = %q, %v, %v", kind, started, err)
	}
	shutdown(t, uc)
	if len(f.ledger.updates) != 0 {
		t.Errorf("ledger updates = %v, want none", f.ledger.updates)
	}
}

func TestDispatch_RecordsSuccess(t *testing.T) {
	f := newFixture(t)
	f.git.files = map[string]string{"main.go": "package main\n"}
	uc := f.useCase(t)

	kind, started, err := uc.Dispatch(context.Background(), "d-2", classifier.Action{Kind: classifier.ActionMainCommitIngested, Repo: testRepo})
	if err != nil || !started {
		t.Fatalf("Dispatch() started = %v, err = %v", started, err)
	}
	if kind != model.WorkflowIngestRepository {
		t.Errorf("kind = %s", kind)
	}
	shutdown(t, uc)

	if len(f.ledger.updates) != 2 {
		t.Fatalf("ledger updates = %+v, want 2", f.ledger.updates)
	}
	if got := f.ledger.updates[0]; got.Status != model.DeliveryDispatched || got.Action != string(model.WorkflowIngestRepository) {
		t.Errorf("first update = %+v", got)
	}
	if got := f.ledger.updates[1]; got.Status != model.DeliverySucceeded || got.ID != "d-2" || got.Error != "" {
		t.Errorf("final update = %+v", got)
	}
}

func TestDispatch_RecordsFailure(t *testing.T) {
	f := newFixture(t)
	f.store = nil
	uc := f.useCase(t)

	if _, _, err := uc.Dispatch(context.Background(), "d-3", classifier.Action{Kind: classifier.ActionMainCommitIngested, Repo: testRepo}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	shutdown(t, uc)

	last := f.ledger.updates[len(f.ledger.updates)-1]
	if last.Status != model.DeliveryFailed {
		t.Fatalf("final status = %s, want failed", last.Status)
	}
	if !strings.Contains(last.Error, ErrKnowledgeDisabled.Error()) {
		t.Errorf("Error = %q", last.Error)
	}
}

func TestDispatch_AfterShutdown(t *testing.T) {
	f := newFixture(t)
	uc := f.useCase(t)
	shutdown(t, uc)

	_, started, err := uc.Dispatch(context.Background(), "d-4", classifier.Action{Kind: classifier.ActionMainCommitIngested, Repo: testRepo})
	if !errors.Is(err, ErrShuttingDown) || started {
		t.Errorf("Dispatch() started = %v, err = %v, want ErrShuttingDown", started, err)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	f := newFixture(t)
	uc := f.useCase(t)

	// Hold one run open until the test releases it.
	uc.wg.Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := uc.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
	if uc.base.Err() == nil {
		t.Error("base context not cancelled after timeout")
	}
	uc.wg.Done()
}

func TestRun_UnsupportedWorkflow(t *testing.T) {
	uc := newFixture(t).useCase(t)
	err := uc.Run(context.Background(), model.WorkflowTask{Kind: "dance", Repo: testRepo})
	if !errors.Is(err, ErrUnsupportedWorkflow) {
		t.Errorf("Run() error = %v, want ErrUnsupportedWorkflow", err)
	}
}

func TestImplementIssue(t *testing.T) {
	f := newFixture(t)
	f.llm.routes = []string{string(NodeCoder), string(NodePrAgent)}
	f.llm.answer = "Opened pull request #99."
	uc := f.useCase(t)

	task, _ := TaskFor(classifier.Action{
		Kind:  classifier.ActionIssueOpened,
		Repo:  testRepo,
		Issue: &model.Issue{Number: 7, Title: "Add health check", Body: "Expose /health"},
	})
	if err := uc.Run(context.Background(), task); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(f.git.clones) != 1 || f.git.clones[0].branch != "" {
		t.Errorf("clones = %+v, want one clone of the default branch", f.git.clones)
	}
	var sawResearcher bool
	for _, p := range f.llm.systemPrompts() {
		if strings.Contains(p, string(NodeResearcher)) {
			sawResearcher = true
		}
	}
	if !sawResearcher {
		t.Error("supervisor was not offered the researcher")
	}
	if dirs := f.workspaceDirs(t); len(dirs) != 0 {
		t.Errorf("workspace not cleaned up: %v", dirs)
	}
}

func TestImplementIssue_WithoutKnowledge(t *testing.T) {
	f := newFixture(t)
	f.store = nil
	uc := f.useCase(t)

	graph, err := uc.implementIssueGraph()
	if err != nil {
		t.Fatalf("implementIssueGraph() error = %v", err)
	}
	for _, w := range graph.Workers {
		if w.Name() == NodeResearcher {
			t.Error("researcher wired without a knowledge store")
		}
	}
	if graph.Bootstrap != NodeCheckoutAgent || graph.Workers[0].Name() != NodeCheckoutAgent {
		t.Errorf("bootstrap = %s", graph.Bootstrap)
	}
}

func TestImplementIssue_MissingIssueNumber(t *testing.T) {
	uc := newFixture(t).useCase(t)
	err := uc.Run(context.Background(), model.WorkflowTask{Kind: model.WorkflowImplementIssue, Repo: testRepo})
	if !errors.Is(err, ErrMissingArgument) {
		t.Errorf("Run() error = %v, want ErrMissingArgument", err)
	}
}

func supportTask(branch string) model.WorkflowTask {
	comment := model.Comment{ID: 3, Body: "/support rename the helper", AuthorLogin: "carol"}
	task, _ := TaskFor(classifier.Action{
		Kind:        classifier.ActionSupportRequested,
		Repo:        testRepo,
		PullRequest: &model.PullRequestContext{Number: 12, SourceBranch: branch, Repo: testRepo},
		Comment:     &comment,
	})
	return task
}

func TestAddressComments_PostsLastAnswer(t *testing.T) {
	f := newFixture(t)
	f.gh.pr = model.PullRequestContext{Number: 12, SourceBranch: "feature", State: model.PullRequestOpen}
	f.gh.files = []model.FileDiff{{Filename: "util.go", Patch: "+func helper() {}"}}
	f.llm.routes = []string{string(NodeCoder)}
	f.llm.answer = "Renamed helper to normalize."
	uc := f.useCase(t)

	if err := uc.Run(context.Background(), supportTask("")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if f.gh.getPR != 1 {
		t.Errorf("GetPullRequest calls = %d, want 1 to resolve the branch", f.gh.getPR)
	}
	if len(f.git.clones) != 1 || f.git.clones[0].branch != "feature" {
		t.Errorf("clones = %+v, want the source branch", f.git.clones)
	}
	if len(f.gh.comments) != 1 {
		t.Fatalf("comments = %v", f.gh.comments)
	}
	if !strings.HasPrefix(f.gh.comments[0], testMarker) || !strings.Contains(f.gh.comments[0], "Renamed helper to normalize.") {
		t.Errorf("reply = %q", f.gh.comments[0])
	}
	// Workers see the branch and the diff.
	var sawDiff bool
	for _, r := range f.llm.requests {
		if len(r.Messages) > 0 && containsAll(r.Messages[0].Parts[0].Text, "branch feature", "+func helper() {}") {
			sawDiff = true
		}
	}
	if !sawDiff {
		t.Error("worker prompt is missing the branch or diff")
	}
}

func TestAddressComments_BootstrapFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.git.cloneErr = errBoom
	uc := f.useCase(t)

	err := uc.Run(context.Background(), supportTask("feature"))
	if !errors.Is(err, orchestrator.ErrBootstrapFailed) {
		t.Fatalf("Run() error = %v, want ErrBootstrapFailed", err)
	}
	if f.gh.getPR != 0 {
		t.Errorf("GetPullRequest called with a known branch")
	}
	if len(f.gh.comments) != 1 || !strings.Contains(f.gh.comments[0], "could not complete") {
		t.Errorf("comments = %v", f.gh.comments)
	}
	if dirs := f.workspaceDirs(t); len(dirs) != 0 {
		t.Errorf("workspace not cleaned up: %v", dirs)
	}
}

func TestAddressComments_BranchLookupFails(t *testing.T) {
	f := newFixture(t)
	f.gh.prErr = errBoom
	uc := f.useCase(t)

	if err := uc.Run(context.Background(), supportTask("")); !errors.Is(err, errBoom) {
		t.Errorf("Run() error = %v, want errBoom", err)
	}
	if len(f.git.clones) != 0 {
		t.Error("cloned without a branch")
	}
}

func TestIngestRepository(t *testing.T) {
	f := newFixture(t)
	f.git.files = map[string]string{
		"main.go":      "package main\n",
		"docs/API.md":  "# API\n",
		"logo.png":     "not text",
		".git/HEAD":    "ref: refs/heads/main\n",
		"scripts/x.py": "print(1)\n",
	}
	uc := f.useCase(t)

	task := model.WorkflowTask{Kind: model.WorkflowIngestRepository, Repo: testRepo}
	if err := uc.Run(context.Background(), task); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"delete:acme-widgets", "upsert:acme-widgets"}
	if strings.Join(f.store.calls, ",") != strings.Join(want, ",") {
		t.Errorf("store calls = %v, want %v", f.store.calls, want)
	}
	paths := map[string]bool{}
	for _, d := range f.store.docs {
		paths[d.Path] = true
	}
	for _, p := range []string{"main.go", "docs/API.md", "scripts/x.py"} {
		if !paths[p] {
			t.Errorf("document %s not ingested (got %v)", p, paths)
		}
	}
	if paths["logo.png"] || paths[".git/HEAD"] {
		t.Errorf("unexpected documents: %v", paths)
	}
	if len(f.git.checkouts) != 1 || f.git.checkouts[0] != "main" {
		t.Errorf("checkouts = %v, want the current default branch", f.git.checkouts)
	}

	// The second run reuses the same checkout directory.
	if err := uc.Run(context.Background(), task); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if f.git.clones[0].dir != f.git.clones[1].dir {
		t.Errorf("clone dirs differ: %s vs %s", f.git.clones[0].dir, f.git.clones[1].dir)
	}
}
