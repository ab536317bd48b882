package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/model"
)

// Run executes graph for task until the supervisor selects FINISH.
//
// The bootstrap worker runs first. After every worker turn control returns
// to the supervisor. Node executions and worker tool rounds share one step
// budget; running out aborts with ErrStepBudgetExceeded. A bootstrap error
// aborts with ErrBootstrapFailed. Other worker errors are recorded in
// history and the run continues. The returned State is the last committed
// state, also on error.
func (e *Engine) Run(ctx context.Context, task model.WorkflowTask, graph Graph, ws *agent.Workspace) (State, error) {
	workers, err := e.index(graph)
	if err != nil {
		return State{Task: task, Workspace: ws}, err
	}

	st := State{
		Task:      task,
		NextNode:  graph.Bootstrap,
		Workspace: ws,
	}
	options := routeOptions(graph)
	budget := NewBudget(e.cfg.MaxSteps)

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if err := budget.Consume(); err != nil {
			e.l.Warnf(ctx, "%s: %s aborted at node %s after %d steps", LogPrefixRun, task.Kind, st.NextNode, budget.Used())
			return st, err
		}
		st.Steps = budget.Used()

		if st.NextNode == NodeSupervisor {
			next := e.route(ctx, graph.Supervisor, RouteInput{
				Task:    task,
				History: cloneHistory(st.History),
				Options: options,
			}, workers)
			if next == NodeFinish {
				st.Finished = true
				st.NextNode = NodeFinish
				e.l.Infof(ctx, "%s: %s finished after %d steps, %d entries", LogPrefixRun, task.Kind, st.Steps, len(st.History))
				return st, nil
			}
			st.NextNode = next
			continue
		}

		worker := workers[st.NextNode]
		e.l.Infof(ctx, "%s: step %d worker %s", LogPrefixRun, st.Steps, worker.Name())
		answer, err := worker.Execute(ctx, WorkerInput{
			Task:      task,
			History:   cloneHistory(st.History),
			Workspace: ws,
			Budget:    budget,
		})
		st.Steps = budget.Used()

		switch {
		case err == nil:
			st.History = append(st.History, Entry{Worker: worker.Name(), Content: answer})
		case errors.Is(err, ErrStepBudgetExceeded):
			return st, err
		case worker.Name() == graph.Bootstrap:
			e.l.Errorf(ctx, "%s: bootstrap worker %s failed: %v", LogPrefixRun, worker.Name(), err)
			return st, fmt.Errorf("%w: %s: %w", ErrBootstrapFailed, worker.Name(), err)
		default:
			e.l.Warnf(ctx, "%s: worker %s failed: %v", LogPrefixRun, worker.Name(), err)
			st.History = append(st.History, Entry{
				Worker:  worker.Name(),
				Content: fmt.Sprintf(MsgWorkerFailed, err),
				Failed:  true,
			})
		}
		st.NextNode = NodeSupervisor
	}
}

// route asks the supervisor for the next node, falling back to FINISH on
// error or on a name outside the closed option set.
func (e *Engine) route(ctx context.Context, sup Supervisor, in RouteInput, workers map[NodeName]Worker) NodeName {
	next, err := sup.Route(ctx, in)
	if err != nil {
		e.l.Warnf(ctx, "%s: supervisor error, finishing: %v", LogPrefixRun, err)
		return NodeFinish
	}
	if next == NodeFinish {
		return NodeFinish
	}
	if _, ok := workers[next]; !ok {
		e.l.Warnf(ctx, "%s: supervisor chose unknown node %q, finishing", LogPrefixRun, next)
		return NodeFinish
	}
	return next
}

func (e *Engine) index(graph Graph) (map[NodeName]Worker, error) {
	if graph.Supervisor == nil {
		return nil, fmt.Errorf("%w: no supervisor", ErrInvalidGraph)
	}
	workers := make(map[NodeName]Worker, len(graph.Workers))
	for _, w := range graph.Workers {
		name := w.Name()
		if name == NodeSupervisor || name == NodeFinish || name == "" {
			return nil, fmt.Errorf("%w: reserved worker name %q", ErrInvalidGraph, name)
		}
		if _, dup := workers[name]; dup {
			return nil, fmt.Errorf("%w: duplicate worker %q", ErrInvalidGraph, name)
		}
		workers[name] = w
	}
	if _, ok := workers[graph.Bootstrap]; !ok {
		return nil, fmt.Errorf("%w: bootstrap %q is not a worker", ErrInvalidGraph, graph.Bootstrap)
	}
	return workers, nil
}

func routeOptions(graph Graph) []NodeName {
	options := make([]NodeName, 0, len(graph.Workers)+1)
	for _, w := range graph.Workers {
		options = append(options, w.Name())
	}
	return append(options, NodeFinish)
}

func cloneHistory(h []Entry) []Entry {
	out := make([]Entry, len(h))
	copy(out, h)
	return out
}
