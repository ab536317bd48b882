package model

// WorkflowKind names a workflow the orchestration engine can run.
type WorkflowKind string

const (
	WorkflowImplementIssue    WorkflowKind = "implement_issue"
	WorkflowReviewAndBeautify WorkflowKind = "review_and_beautify"
	WorkflowAddressComments   WorkflowKind = "address_comments"
	WorkflowIngestRepository  WorkflowKind = "ingest_repository"
)

// WorkflowTask is the unit submitted to the orchestration engine.
type WorkflowTask struct {
	Kind                WorkflowKind
	Repo                RepositoryReference
	Arguments           map[string]string
	Instruction         string
	ConversationHistory []string
}
