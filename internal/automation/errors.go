package automation

import "errors"

var (
	ErrShuttingDown        = errors.New("automation is shutting down")
	ErrUnsupportedWorkflow = errors.New("unsupported workflow")
	ErrMissingArgument     = errors.New("missing workflow argument")
	ErrKnowledgeDisabled   = errors.New("knowledge store not configured")
)
