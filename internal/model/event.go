package model

import "time"

// EventKind is the canonical kind of an inbound webhook notification.
type EventKind string

const (
	EventPush              EventKind = "push"
	EventIssueOpened       EventKind = "issues"
	EventPullRequestAction EventKind = "pull_request"
	EventIssueComment      EventKind = "issue_comment"
	EventPullRequestReview EventKind = "pull_request_review"
	EventUnknown           EventKind = "unknown"
)

// EventKindFromHeader maps the X-GitHub-Event header to an EventKind.
func EventKindFromHeader(header string) EventKind {
	switch EventKind(header) {
	case EventPush, EventIssueOpened, EventPullRequestAction, EventIssueComment, EventPullRequestReview:
		return EventKind(header)
	default:
		return EventUnknown
	}
}

// WebhookEvent is one inbound notification. It is consumed once by the
// classifier and never mutated.
type WebhookEvent struct {
	Kind       EventKind
	Header     string // Raw X-GitHub-Event value, kept for logs when Kind is unknown.
	DeliveryID string
	Payload    []byte
	ReceivedAt time.Time
}
