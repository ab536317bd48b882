package orchestrator

import "errors"

var (
	ErrStepBudgetExceeded = errors.New("step budget exceeded")
	ErrBootstrapFailed    = errors.New("bootstrap worker failed")
	ErrInvalidGraph       = errors.New("invalid graph")
	ErrToolRoundsExceeded = errors.New("tool rounds exceeded")
	ErrEmptyAnswer        = errors.New("empty worker answer")
)
