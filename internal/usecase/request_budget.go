package usecase

import "sync"

// RequestBudget caps external calls per run. A limit <= 0 means unlimited.
type RequestBudget struct {
	mu    sync.Mutex
	limit int
	used  int
}

func NewRequestBudget(limit int) *RequestBudget {
	return &RequestBudget{limit: limit}
}

// Set resets the budget to limit and clears the used counter.
func (b *RequestBudget) Set(limit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limit = limit
	b.used = 0
}

// Take consumes one unit. It returns false once the budget is spent.
func (b *RequestBudget) Take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit > 0 && b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

func (b *RequestBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Remaining reports the units left; ok is false for an unlimited budget.
func (b *RequestBudget) Remaining() (remaining int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit <= 0 {
		return 0, false
	}
	return b.limit - b.used, true
}

func (b *RequestBudget) Exhausted() bool {
	remaining, limited := b.Remaining()
	return limited && remaining <= 0
}
