package orchestrator

import (
	"context"
	"errors"
	"testing"

	"repo-autobot/internal/model"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...any)                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Panic(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any)  {}

// fakeWorker answers with its name, or fails with err.
type fakeWorker struct {
	name     NodeName
	err      error
	calls    int
	seenHist []int
}

func (w *fakeWorker) Name() NodeName { return w.name }

func (w *fakeWorker) Execute(ctx context.Context, in WorkerInput) (string, error) {
	w.calls++
	w.seenHist = append(w.seenHist, len(in.History))
	if w.err != nil {
		return "", w.err
	}
	return "done by " + string(w.name), nil
}

// scriptedSupervisor returns its script in order, then FINISH.
type scriptedSupervisor struct {
	script []NodeName
	calls  int
	err    error
}

func (s *scriptedSupervisor) Route(ctx context.Context, in RouteInput) (NodeName, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.script) {
		s.calls++
		return NodeFinish, nil
	}
	next := s.script[s.calls]
	s.calls++
	return next, nil
}

// loopingSupervisor never finishes.
type loopingSupervisor struct{ next NodeName }

func (s *loopingSupervisor) Route(ctx context.Context, in RouteInput) (NodeName, error) {
	return s.next, nil
}

func newEngine(maxSteps int) *Engine {
	return New(Config{MaxSteps: maxSteps}, &mockLogger{})
}

var testTask = model.WorkflowTask{Kind: model.WorkflowImplementIssue, Instruction: "implement issue 7"}

func TestRun_TerminatesWithKPlusOneEntries(t *testing.T) {
	for k := 0; k <= 4; k++ {
		checkout := &fakeWorker{name: "CheckoutAgent"}
		coder := &fakeWorker{name: "Coder"}
		script := make([]NodeName, k)
		for i := range script {
			script[i] = "Coder"
		}
		graph := Graph{
			Bootstrap:  "CheckoutAgent",
			Workers:    []Worker{checkout, coder},
			Supervisor: &scriptedSupervisor{script: script},
		}

		st, err := newEngine(100).Run(context.Background(), testTask, graph, nil)
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if !st.Finished {
			t.Errorf("k=%d: expected finished state", k)
		}
		if len(st.History) != k+1 {
			t.Errorf("k=%d: expected %d history entries, got %d", k, k+1, len(st.History))
		}
		if st.History[0].Worker != "CheckoutAgent" {
			t.Errorf("k=%d: expected bootstrap entry first, got %s", k, st.History[0].Worker)
		}
		if coder.calls != k {
			t.Errorf("k=%d: expected coder to run %d times, got %d", k, k, coder.calls)
		}
		// bootstrap + k workers + k+1 supervisor decisions
		if want := 1 + k + k + 1; st.Steps != want {
			t.Errorf("k=%d: expected %d steps, got %d", k, want, st.Steps)
		}
	}
}

func TestRun_WorkersSeeCommittedPrefix(t *testing.T) {
	checkout := &fakeWorker{name: "CheckoutAgent"}
	coder := &fakeWorker{name: "Coder"}
	graph := Graph{
		Bootstrap:  "CheckoutAgent",
		Workers:    []Worker{checkout, coder},
		Supervisor: &scriptedSupervisor{script: []NodeName{"Coder", "Coder"}},
	}

	if _, err := newEngine(100).Run(context.Background(), testTask, graph, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coder.seenHist) != 2 || coder.seenHist[0] != 1 || coder.seenHist[1] != 2 {
		t.Errorf("expected coder to see history lengths [1 2], got %v", coder.seenHist)
	}
}

func TestRun_StepBudgetAborts(t *testing.T) {
	checkout := &fakeWorker{name: "CheckoutAgent"}
	coder := &fakeWorker{name: "Coder"}
	graph := Graph{
		Bootstrap:  "CheckoutAgent",
		Workers:    []Worker{checkout, coder},
		Supervisor: &loopingSupervisor{next: "Coder"},
	}

	st, err := newEngine(7).Run(context.Background(), testTask, graph, nil)
	if !errors.Is(err, ErrStepBudgetExceeded) {
		t.Fatalf("expected ErrStepBudgetExceeded, got %v", err)
	}
	if st.Finished {
		t.Error("aborted run must not be finished")
	}
	if st.Steps != 7 {
		t.Errorf("expected to stop at 7 steps, got %d", st.Steps)
	}
}

func TestRun_BootstrapFailureIsFatal(t *testing.T) {
	checkout := &fakeWorker{name: "CheckoutAgent", err: errors.New("clone failed")}
	coder := &fakeWorker{name: "Coder"}
	graph := Graph{
		Bootstrap:  "CheckoutAgent",
		Workers:    []Worker{checkout, coder},
		Supervisor: &scriptedSupervisor{script: []NodeName{"Coder"}},
	}

	st, err := newEngine(100).Run(context.Background(), testTask, graph, nil)
	if !errors.Is(err, ErrBootstrapFailed) {
		t.Fatalf("expected ErrBootstrapFailed, got %v", err)
	}
	if coder.calls != 0 {
		t.Errorf("no worker should run after bootstrap failure, coder ran %d times", coder.calls)
	}
	if len(st.History) != 0 {
		t.Errorf("expected empty history, got %d entries", len(st.History))
	}
}

func TestRun_WorkerFailureRecordedAndContinues(t *testing.T) {
	checkout := &fakeWorker{name: "CheckoutAgent"}
	coder := &fakeWorker{name: "Coder", err: errors.New("compile error")}
	writer := &fakeWorker{name: "FileWriter"}
	graph := Graph{
		Bootstrap:  "CheckoutAgent",
		Workers:    []Worker{checkout, coder, writer},
		Supervisor: &scriptedSupervisor{script: []NodeName{"Coder", "FileWriter"}},
	}

	st, err := newEngine(100).Run(context.Background(), testTask, graph, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.History) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(st.History))
	}
	if !st.History[1].Failed || st.History[1].Worker != "Coder" {
		t.Errorf("expected failed Coder entry, got %+v", st.History[1])
	}
	if st.LastAnswer() != "done by FileWriter" {
		t.Errorf("unexpected last answer %q", st.LastAnswer())
	}
}

func TestRun_UnknownOrFailedRouteFinishes(t *testing.T) {
	tests := []struct {
		name string
		sup  Supervisor
	}{
		{"unknown node", &scriptedSupervisor{script: []NodeName{"Hacker"}}},
		{"supervisor node", &scriptedSupervisor{script: []NodeName{NodeSupervisor}}},
		{"supervisor error", &scriptedSupervisor{err: errors.New("llm down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := Graph{
				Bootstrap:  "CheckoutAgent",
				Workers:    []Worker{&fakeWorker{name: "CheckoutAgent"}},
				Supervisor: tt.sup,
			}
			st, err := newEngine(100).Run(context.Background(), testTask, graph, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !st.Finished || len(st.History) != 1 {
				t.Errorf("expected finish after bootstrap, got finished=%v entries=%d", st.Finished, len(st.History))
			}
		})
	}
}

func TestRun_InvalidGraph(t *testing.T) {
	tests := []struct {
		name  string
		graph Graph
	}{
		{"no supervisor", Graph{Bootstrap: "A", Workers: []Worker{&fakeWorker{name: "A"}}}},
		{"bootstrap missing", Graph{Bootstrap: "B", Workers: []Worker{&fakeWorker{name: "A"}}, Supervisor: &scriptedSupervisor{}}},
		{"duplicate worker", Graph{Bootstrap: "A", Workers: []Worker{&fakeWorker{name: "A"}, &fakeWorker{name: "A"}}, Supervisor: &scriptedSupervisor{}}},
		{"reserved name", Graph{Bootstrap: "A", Workers: []Worker{&fakeWorker{name: "A"}, &fakeWorker{name: NodeFinish}}, Supervisor: &scriptedSupervisor{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newEngine(10).Run(context.Background(), testTask, tt.graph, nil); !errors.Is(err, ErrInvalidGraph) {
				t.Errorf("expected ErrInvalidGraph, got %v", err)
			}
		})
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	graph := Graph{
		Bootstrap:  "CheckoutAgent",
		Workers:    []Worker{&fakeWorker{name: "CheckoutAgent"}},
		Supervisor: &scriptedSupervisor{},
	}
	if _, err := newEngine(10).Run(ctx, testTask, graph, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBudget(t *testing.T) {
	b := NewBudget(2)
	if b.Consume() != nil || b.Consume() != nil {
		t.Fatal("expected two steps to fit")
	}
	if err := b.Consume(); !errors.Is(err, ErrStepBudgetExceeded) {
		t.Fatalf("expected ErrStepBudgetExceeded, got %v", err)
	}
	if b.Used() != 2 {
		t.Errorf("expected used to stay at 2, got %d", b.Used())
	}
}
