package git

import "context"

// Config holds git identity and remote settings.
type Config struct {
	Binary      string // Defaults to "git".
	CloneURL    string // Base URL, e.g. https://github.com
	Token       string // Sent as a basic auth header on HTTPS remote commands.
	AuthorName  string
	AuthorEmail string
	Formatter   []string // Command and args; file paths are appended.
}

// Runner executes a command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}
