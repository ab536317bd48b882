package automation

import (
	"time"

	"repo-autobot/internal/agent"
	"repo-autobot/internal/agent/orchestrator"
	"repo-autobot/internal/agent/tools"
	"repo-autobot/internal/knowledge"
	"repo-autobot/pkg/llmprovider"
)

// Config holds the bot settings the workflows need.
type Config struct {
	RootDir        string
	CommentMarker  string
	ValidFileTypes []string
	RunTimeout     time.Duration

	// KnowledgeLimit bounds the snippets added to a review prompt.
	KnowledgeLimit int
	// MaxFileBytes bounds the files read during ingestion.
	MaxFileBytes int64
}

// Deps are the collaborators of the workflows. Knowledge and Ledger are
// optional.
type Deps struct {
	Engine    *orchestrator.Engine
	LLM       llmprovider.Generator
	Tools     *agent.ToolRegistry
	GitHub    GitHub
	Git       tools.Git
	Knowledge knowledge.Store
	Ledger    Ledger
	Now       func() time.Time
}
