package orchestrator

import (
	"context"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/model"
)

// NodeName identifies a worker, the supervisor, or the finish terminal.
type NodeName string

const (
	NodeSupervisor NodeName = "supervisor"
	NodeFinish     NodeName = "FINISH"
)

// Entry is one worker answer in the run history.
type Entry struct {
	Worker  NodeName
	Content string
	Failed  bool
}

// State is owned by exactly one run. History is append-only.
type State struct {
	Task      model.WorkflowTask
	History   []Entry
	NextNode  NodeName
	Steps     int
	Finished  bool
	Workspace *agent.Workspace
}

// LastAnswer returns the content of the last successful worker entry.
func (s State) LastAnswer() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if !s.History[i].Failed {
			return s.History[i].Content
		}
	}
	return ""
}

// WorkerNode describes a worker: its name, its role prompt and the tools it
// may call.
type WorkerNode struct {
	Name         NodeName
	Role         string
	Capabilities []agent.Capability
}

// WorkerInput is what a worker sees when it runs. History is a copy of the
// committed prefix.
type WorkerInput struct {
	Task      model.WorkflowTask
	History   []Entry
	Workspace *agent.Workspace
	Budget    *Budget
}

// Worker executes one turn and returns its final answer.
type Worker interface {
	Name() NodeName
	Execute(ctx context.Context, in WorkerInput) (string, error)
}

// RouteInput is what the supervisor sees when it routes.
type RouteInput struct {
	Task    model.WorkflowTask
	History []Entry
	Options []NodeName // Worker names followed by NodeFinish.
}

// Supervisor picks the next node. Any returned name outside Options is
// treated as NodeFinish.
type Supervisor interface {
	Route(ctx context.Context, in RouteInput) (NodeName, error)
}

// Graph is a star around the supervisor. Bootstrap names the entry worker,
// which must be one of Workers.
type Graph struct {
	Bootstrap  NodeName
	Workers    []Worker
	Supervisor Supervisor
}

// Config bounds a run.
type Config struct {
	MaxSteps      int
	MaxToolRounds int
}
