package agent

import (
	"context"
	"fmt"
	"sort"

	"repo-autobot/pkg/llmprovider"
)

// Capability names one tool operation. The set is closed: a registry only
// accepts tools whose name is a known Capability.
type Capability string

const (
	// Repository
	CapCloneRepository        Capability = "clone_repository"
	CapCheckoutBranch         Capability = "checkout_branch"
	CapHasChanges             Capability = "has_changes"
	CapCommitAndPush          Capability = "commit_and_push"
	CapGenerateBranchName     Capability = "generate_branch_name"
	CapCreateBranchAndPush    Capability = "create_branch_and_push"
	CapCreatePullRequest      Capability = "create_pull_request"
	CapLinkIssueToPullRequest Capability = "link_issue_to_pull_request"
	CapFormatFiles            Capability = "format_files"

	// Files
	CapCreateDirectory Capability = "create_directory"
	CapFindFile        Capability = "find_file"
	CapReadFile        Capability = "read_file"
	CapCreateFile      Capability = "create_file"
	CapUpdateFile      Capability = "update_file"

	// Knowledge
	CapSearchKnowledge Capability = "search_knowledge"
)

var knownCapabilities = map[Capability]struct{}{
	CapCloneRepository: {}, CapCheckoutBranch: {}, CapHasChanges: {}, CapCommitAndPush: {},
	CapGenerateBranchName: {}, CapCreateBranchAndPush: {}, CapCreatePullRequest: {},
	CapLinkIssueToPullRequest: {}, CapFormatFiles: {},
	CapCreateDirectory: {}, CapFindFile: {}, CapReadFile: {}, CapCreateFile: {}, CapUpdateFile: {},
	CapSearchKnowledge: {},
}

// Known reports whether c belongs to the closed capability set.
func (c Capability) Known() bool {
	_, ok := knownCapabilities[c]
	return ok
}

// Tool represents an agent tool that can be called by LLM.
type Tool interface {
	// Name returns the capability this tool implements.
	Name() Capability

	// Description returns what the tool does (for LLM).
	Description() string

	// Parameters returns JSON schema for tool parameters.
	Parameters() map[string]any

	// Execute runs the tool against the run's workspace.
	Execute(ctx context.Context, ws *Workspace, params map[string]any) (any, error)
}

// ToolRegistry manages available tools.
type ToolRegistry struct {
	tools map[Capability]Tool
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[Capability]Tool),
	}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tools ...Tool) error {
	for _, tool := range tools {
		if !tool.Name().Known() {
			return fmt.Errorf("%w: %s", ErrUnknownCapability, tool.Name())
		}
		r.tools[tool.Name()] = tool
	}
	return nil
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[Capability(name)]
	return tool, ok
}

// List returns all registered tools ordered by name.
func (r *ToolRegistry) List() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Subset returns a registry holding only the given capabilities. Missing
// capabilities are reported as an error.
func (r *ToolRegistry) Subset(caps ...Capability) (*ToolRegistry, error) {
	sub := NewToolRegistry()
	for _, c := range caps {
		tool, ok := r.tools[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCapabilityNotRegistered, c)
		}
		sub.tools[c] = tool
	}
	return sub, nil
}

// ToFunctionDefinitions converts tools to LLM function calling format.
func (r *ToolRegistry) ToFunctionDefinitions() []llmprovider.Tool {
	list := r.List()
	tools := make([]llmprovider.Tool, 0, len(list))
	for _, tool := range list {
		tools = append(tools, llmprovider.Tool{
			Name:        string(tool.Name()),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return tools
}
