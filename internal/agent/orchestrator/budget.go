package orchestrator

import (
	"fmt"
	"sync/atomic"
)

// Budget counts node executions and tool rounds against a run-wide limit.
type Budget struct {
	limit int
	used  atomic.Int64
}

func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Consume takes one step. It fails with ErrStepBudgetExceeded once the
// limit has been used.
func (b *Budget) Consume() error {
	if b == nil {
		return nil
	}
	if n := b.used.Add(1); n > int64(b.limit) {
		b.used.Add(-1)
		return fmt.Errorf("%w: limit %d", ErrStepBudgetExceeded, b.limit)
	}
	return nil
}

func (b *Budget) Used() int {
	if b == nil {
		return 0
	}
	return int(b.used.Load())
}
