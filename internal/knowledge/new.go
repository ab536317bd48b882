package knowledge

import (
	"repo-autobot/internal/knowledge/repository"
	pkgLog "repo-autobot/pkg/log"
)

type implStore struct {
	repo repository.VectorRepository
	cfg  Config
	l    pkgLog.Logger
}

// New returns a Store backed by repo.
func New(repo repository.VectorRepository, cfg Config, l pkgLog.Logger) Store {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &implStore{repo: repo, cfg: cfg, l: l}
}
