package git

const (
	DefaultBinary   = "git"
	DefaultCloneURL = "https://github.com"

	branchTimeLayout = "20060102150405"
	issueBranchFmt   = "autocode/github-issue-%d-%s"

	tokenUser = "x-access-token"
)
