package git

import (
	"strings"

	pkgLog "repo-autobot/pkg/log"
)

// Client drives a local working copy through the git binary.
type Client struct {
	cfg Config
	run Runner
	l   pkgLog.Logger
}

func New(cfg Config, l pkgLog.Logger) *Client {
	secrets := []string{cfg.Token}
	if cfg.Token != "" {
		secrets = append(secrets, basicCredentials(cfg.Token))
	}
	return NewWithRunner(cfg, execRunner{secrets: secrets}, l)
}

// NewWithRunner is used by tests to replace command execution.
func NewWithRunner(cfg Config, run Runner, l pkgLog.Logger) *Client {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.CloneURL == "" {
		cfg.CloneURL = DefaultCloneURL
	}
	cfg.CloneURL = strings.TrimRight(cfg.CloneURL, "/")
	return &Client{cfg: cfg, run: run, l: l}
}
