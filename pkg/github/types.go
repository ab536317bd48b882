package github

type Config struct {
	Token    string
	APIURL   string // Empty for github.com.
	BotLogin string // Only comments authored by this login are cleaned up.
}

// NewPullRequest describes a pull request to open.
type NewPullRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// CreatedPullRequest is what GitHub returns for a new pull request.
type CreatedPullRequest struct {
	Number int
	URL    string
}
