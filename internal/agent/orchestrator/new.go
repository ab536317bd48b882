package orchestrator

import (
	pkgLog "repo-autobot/pkg/log"
)

// Engine runs workflow graphs. It holds no per-run state, so one Engine can
// serve concurrent runs.
type Engine struct {
	cfg Config
	l   pkgLog.Logger
}

func New(cfg Config, l pkgLog.Logger) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	return &Engine{cfg: cfg, l: l}
}

// MaxToolRounds is the per-turn tool round cap for LLM workers built for
// this engine.
func (e *Engine) MaxToolRounds() int {
	return e.cfg.MaxToolRounds
}
