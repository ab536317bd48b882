package classifier

import (
	"repo-autobot/pkg/log"
)

type eventClassifier struct {
	cfg    Config
	source CommentSource
	l      log.Logger
}

var _ Classifier = (*eventClassifier)(nil)

// New creates an event classifier. source may be nil, in which case support
// requests fall back to a single-comment chain and reviews are skipped.
func New(cfg Config, source CommentSource, l log.Logger) Classifier {
	return &eventClassifier{
		cfg:    cfg,
		source: source,
		l:      l,
	}
}
