package model

import "time"

// Comment is a single pull request or issue comment. InReplyToID, when set,
// points at the comment this one answers.
type Comment struct {
	ID          int64
	Body        string
	AuthorLogin string
	InReplyToID *int64
	ReviewID    int64
	Path        string
	DiffHunk    string
	CreatedAt   time.Time
}

// ReplyChain is a thread ordered oldest first.
type ReplyChain []Comment

// Review is a submitted pull request review summary.
type Review struct {
	ID          int64
	Body        string
	AuthorLogin string
	State       string
}

// FileDiff is one changed file of a pull request.
type FileDiff struct {
	Filename string
	Status   string
	Patch    string
}

// Issue is the subset of an issue the workflows need.
type Issue struct {
	Number int
	Title  string
	Body   string
}
