package automation

import (
	"context"
	"time"

	pkgLog "repo-autobot/pkg/log"
)

func New(deps Deps, cfg Config, l pkgLog.Logger) UseCase {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if cfg.KnowledgeLimit <= 0 {
		cfg.KnowledgeLimit = DefaultKnowledgeLimit
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	base, cancel := context.WithCancel(context.Background())
	return &usecase{
		cfg:    cfg,
		deps:   deps,
		l:      l,
		base:   base,
		cancel: cancel,
	}
}
