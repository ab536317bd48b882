package git

import "errors"

var (
	ErrCommandFailed     = errors.New("git command failed")
	ErrNothingToCommit   = errors.New("nothing to commit")
	ErrNoFormatter       = errors.New("no formatter configured")
	ErrInvalidBranchName = errors.New("invalid branch name")
)
