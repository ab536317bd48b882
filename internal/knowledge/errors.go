package knowledge

import "errors"

var (
	ErrEmptyRepoKey = errors.New("knowledge: empty repository key")
	ErrEmptyQuery   = errors.New("knowledge: empty query")
)
