package engine

import "sync"

// SharedHistory is a [from][to] history table shared across every Lazy SMP
// worker, so a quiet move that cuts off in one thread immediately improves
// move ordering in the others. It uses the same saturating gravity update as
// MoveOrderer's per-worker history, just guarded for concurrent access.
type SharedHistory struct {
	mu      sync.RWMutex
	history [64][64]int
}

// NewSharedHistory creates an empty shared history table.
func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

// Get returns the current history score for a from/to pair.
func (sh *SharedHistory) Get(from, to int) int {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.history[from][to]
}

// Update applies a saturating gravity bonus to a from/to pair, same as
// MoveOrderer's applyHistoryBonus.
func (sh *SharedHistory) Update(from, to, bonus int) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	applyHistoryBonus(&sh.history[from][to], bonus)
}

// Clear resets every entry, for a new game.
func (sh *SharedHistory) Clear() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.history = [64][64]int{}
}
