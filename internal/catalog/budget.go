package catalog

import (
	"errors"
	"sync/atomic"
)

// ErrBudgetExhausted reports that the run or item call ceiling was reached.
// Matching stops and returns the best score seen so far.
var ErrBudgetExhausted = errors.New("catalog call budget exhausted")

// Budget is the run-wide catalog call ceiling shared by all items processed
// concurrently. Decrements are atomic; there is no other shared state.
type Budget struct {
	remaining atomic.Int64
	itemLimit int64
}

// NewBudget builds a budget with a run-wide ceiling and a per-item ceiling.
func NewBudget(runLimit, itemLimit int) *Budget {
	b := &Budget{itemLimit: int64(itemLimit)}
	b.remaining.Store(int64(runLimit))
	return b
}

// Remaining returns the run-wide calls still available.
func (b *Budget) Remaining() int {
	r := b.remaining.Load()
	if r < 0 {
		return 0
	}
	return int(r)
}

// Item returns a per-item view of the budget. The view is carried across
// both the main pass and the rescue pass so an item can never exceed its
// total ceiling.
func (b *Budget) Item() *ItemBudget {
	return &ItemBudget{budget: b}
}

// ItemBudget tracks one item's spend against both its own ceiling and the
// shared run ceiling.
type ItemBudget struct {
	budget *Budget
	used   atomic.Int64
}

// Acquire reserves one catalog call. It must be called immediately before
// every external query; once it fails, no further queries may be issued
// for this item.
func (ib *ItemBudget) Acquire() error {
	if ib.used.Load() >= ib.budget.itemLimit {
		return ErrBudgetExhausted
	}
	if ib.budget.remaining.Add(-1) < 0 {
		ib.budget.remaining.Add(1)
		return ErrBudgetExhausted
	}
	ib.used.Add(1)
	return nil
}

// Used returns the calls this item has spent so far.
func (ib *ItemBudget) Used() int {
	return int(ib.used.Load())
}
