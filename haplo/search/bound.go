package search

import "go.uber.org/atomic"

// AtomicMinUpdate performs the CAS-min idiom required for every shared
// bound update: load the current value, and if it is already <= the
// proposed value, stop; otherwise retry a compare-and-swap until it wins or
// another writer has already pushed the value at or below the proposal.
// Implementations must not substitute an unconditional store here —
// monotonicity of the shared bound is the pruning protocol's correctness
// hinge (spec.md §5, §9).
func AtomicMinUpdate(shared *atomic.Uint64, proposed uint64) {
	for {
		current := shared.Load()
		if current <= proposed {
			return
		}
		if shared.CAS(current, proposed) {
			return
		}
	}
}

// SharedBound is the level-spanning (for min_lbound) or search-spanning
// (for min_ubound) atomic scalar the parallel branch workers publish
// bounds into.
type SharedBound struct {
	value *atomic.Uint64
}

// NewSharedBound creates a SharedBound seeded at initial.
func NewSharedBound(initial uint64) *SharedBound {
	return &SharedBound{value: atomic.NewUint64(initial)}
}

// Load returns the current value.
func (b *SharedBound) Load() uint64 {
	return b.value.Load()
}

// UpdateMin applies the CAS-min idiom, lowering the shared value to
// proposed if proposed is smaller.
func (b *SharedBound) UpdateMin(proposed uint64) {
	AtomicMinUpdate(b.value, proposed)
}
