package automation

import (
	"context"
	"fmt"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/agent/orchestrator"
)

var (
	researcherNode = orchestrator.WorkerNode{
		Name: NodeResearcher,
		Role: "You are a researcher. Search the repository knowledge base and read files to find the code " +
			"relevant to the request. Report the relevant files, functions and conventions.",
		Capabilities: []agent.Capability{agent.CapSearchKnowledge, agent.CapFindFile, agent.CapReadFile},
	}
	coderNode = orchestrator.WorkerNode{
		Name: NodeCoder,
		Role: "You are a senior developer. Read the files you need, then write the code that fulfils the request. " +
			"Answer with the full content of every file to create or the exact text to append, each with its path.",
		Capabilities: []agent.Capability{agent.CapFindFile, agent.CapReadFile},
	}
	reviewerNode = orchestrator.WorkerNode{
		Name: NodeReviewer,
		Role: "You are a senior developer who excels at code reviews. Give detailed, specific and actionable " +
			"feedback on the proposed code. Communicate directly about technical matters.",
		Capabilities: []agent.Capability{agent.CapFindFile, agent.CapReadFile},
	}
	qaTesterNode = orchestrator.WorkerNode{
		Name: NodeQATester,
		Role: "You are a QA engineer. Write unit tests for the proposed code using the framework the repository " +
			"already uses, each with its file path.",
		Capabilities: []agent.Capability{agent.CapFindFile, agent.CapReadFile},
	}
	fileWriterNode = orchestrator.WorkerNode{
		Name: NodeFileWriter,
		Role: "You write the code produced so far to files in the local repository. Create directories as needed " +
			"and format the files you wrote. Report every path you touched.",
		Capabilities: []agent.Capability{
			agent.CapCreateDirectory, agent.CapFindFile, agent.CapReadFile,
			agent.CapCreateFile, agent.CapUpdateFile, agent.CapFormatFiles,
		},
	}
	prAgentNode = orchestrator.WorkerNode{
		Name: NodePrAgent,
		Role: "You check whether the local repository has changes. If it does, generate a branch name, create and push " +
			"the branch, open a pull request against the default branch and link it to the issue.",
		Capabilities: []agent.Capability{
			agent.CapHasChanges, agent.CapGenerateBranchName, agent.CapCreateBranchAndPush,
			agent.CapCreatePullRequest, agent.CapLinkIssueToPullRequest,
		},
	}
	committerNode = orchestrator.WorkerNode{
		Name: NodeCommitter,
		Role: "You check whether the local repository has changes. If it does, commit them with a short message " +
			"describing the change and push to the current branch.",
		Capabilities: []agent.Capability{agent.CapHasChanges, agent.CapCommitAndPush},
	}
)

// checkoutWorker prepares the workspace without consulting the LLM: it
// clones the repository and checks out branch, or the default branch when
// branch is empty.
type checkoutWorker struct {
	clone  agent.Tool
	branch string
}

func newCheckoutWorker(registry *agent.ToolRegistry, branch string) (orchestrator.Worker, error) {
	clone, ok := registry.Get(string(agent.CapCloneRepository))
	if !ok {
		return nil, fmt.Errorf("worker %s: %w: %s", NodeCheckoutAgent, agent.ErrCapabilityNotRegistered, agent.CapCloneRepository)
	}
	return &checkoutWorker{clone: clone, branch: branch}, nil
}

func (w *checkoutWorker) Name() orchestrator.NodeName {
	return NodeCheckoutAgent
}

func (w *checkoutWorker) Execute(ctx context.Context, in orchestrator.WorkerInput) (string, error) {
	params := map[string]any{}
	if w.branch != "" {
		params["branch"] = w.branch
	}
	if _, err := w.clone.Execute(ctx, in.Workspace, params); err != nil {
		return "", err
	}
	return fmt.Sprintf("Cloned %s into %s on branch %s.", in.Workspace.Repo.FullPath(), in.Workspace.LocalPath, in.Workspace.Branch), nil
}

// implementIssueGraph wires the issue implementation team. The researcher
// is left out when no knowledge store is registered.
func (uc *usecase) implementIssueGraph() (orchestrator.Graph, error) {
	nodes := []orchestrator.WorkerNode{coderNode, reviewerNode, qaTesterNode, fileWriterNode, prAgentNode}
	if _, ok := uc.deps.Tools.Get(string(agent.CapSearchKnowledge)); ok {
		nodes = append([]orchestrator.WorkerNode{researcherNode}, nodes...)
	}
	return uc.graph("", nodes)
}

func (uc *usecase) addressCommentsGraph(branch string) (orchestrator.Graph, error) {
	return uc.graph(branch, []orchestrator.WorkerNode{coderNode, fileWriterNode, committerNode})
}

func (uc *usecase) graph(branch string, nodes []orchestrator.WorkerNode) (orchestrator.Graph, error) {
	checkout, err := newCheckoutWorker(uc.deps.Tools, branch)
	if err != nil {
		return orchestrator.Graph{}, err
	}

	workers := make([]orchestrator.Worker, 0, len(nodes)+1)
	workers = append(workers, checkout)
	for _, node := range nodes {
		w, err := orchestrator.NewLLMWorker(node, uc.deps.LLM, uc.deps.Tools, uc.deps.Engine.MaxToolRounds(), uc.l)
		if err != nil {
			return orchestrator.Graph{}, err
		}
		workers = append(workers, w)
	}

	return orchestrator.Graph{
		Bootstrap:  NodeCheckoutAgent,
		Workers:    workers,
		Supervisor: orchestrator.NewLLMSupervisor(uc.deps.LLM, uc.l),
	}, nil
}
