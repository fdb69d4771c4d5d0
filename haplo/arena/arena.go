// Package arena implements the pre-allocated, append-only pool of
// SearchNodes the branch-and-bound driver expands into. Every reference
// between SearchNodes is an arena index, never a pointer, so expansion is a
// single atomic counter rather than a graph of owned allocations.
package arena

import (
	"context"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"go.uber.org/atomic"
)

// Branch records which side of a binary decision a SearchNode represents.
type Branch uint8

const (
	// Left is the value=0 branch.
	Left Branch = iota
	// Right is the value=1 branch.
	Right
)

// SearchNode is a single node of the binary decision tree. Index identifies
// which Node (haplo position) it branches; Root, Left, and Right are arena
// indices of related SearchNodes (0 for "unset", since the true root
// always occupies index 0 and never appears as anyone's child).
type SearchNode struct {
	Index uint64
	Value uint8
	Type  Branch
	Root  uint64
	Left  uint64
	Right uint64

	LowerBound uint64
	UpperBound uint64
}

// Bounds returns the node's current (lower, upper) bound window.
func (n *SearchNode) Bounds() (uint64, uint64) {
	return n.LowerBound, n.UpperBound
}

// SetBounds overwrites the node's bound window, used when a child inherits
// its parent's just-adjusted bounds.
func (n *SearchNode) SetBounds(lower, upper uint64) {
	n.LowerBound = lower
	n.UpperBound = upper
}

// Arena is the pre-allocated SearchNode pool. Capacity is fixed at
// construction to an upper bound on the number of nodes a search may
// generate; there is no deallocation during a search.
type Arena struct {
	slots      []SearchNode
	highWater  atomic.Uint64
	assertions *assert.AssertHandler
}

// NewArena pre-allocates capacity SearchNode slots.
func NewArena(capacity int, assertions *assert.AssertHandler) *Arena {
	return &Arena{
		slots:      make([]SearchNode, capacity),
		assertions: assertions,
	}
}

// Capacity returns the number of pre-allocated slots.
func (a *Arena) Capacity() int {
	return len(a.slots)
}

// HighWater returns the number of SearchNodes allocated so far.
func (a *Arena) HighWater() uint64 {
	return a.highWater.Load()
}

// Node returns a mutable reference to the SearchNode at arena index i.
// Accessing an index at or beyond capacity is a programming error and aborts
// via the assertion handler. Indices below capacity are not checked against
// the high-water mark.
func (a *Arena) Node(i uint64) *SearchNode {
	if a.assertions != nil {
		a.assertions.Assert(context.Background(), i < uint64(len(a.slots)), "arena: index %d exceeds capacity %d", i, len(a.slots))
	} else if i >= uint64(len(a.slots)) {
		panic("arena: index exceeds capacity")
	}
	return &a.slots[i]
}

// GetNextNode atomically advances the high-water mark by one and returns
// the index of the newly reserved slot. Thread-safe: callers invoke it from
// parallel workers.
func (a *Arena) GetNextNode() uint64 {
	idx := a.highWater.Add(1) - 1
	a.checkExhaustion(idx)
	return idx
}

// ReservePair atomically advances the high-water mark by two and returns
// the two consecutive indices reserved, resolving spec.md's "choose one and
// document it" open question in favor of a single atomic fetch-and-add of
// 2 rather than two independent calls to GetNextNode.
func (a *Arena) ReservePair() (uint64, uint64) {
	first := a.highWater.Add(2) - 2
	a.checkExhaustion(first + 1)
	return first, first + 1
}

func (a *Arena) checkExhaustion(lastReserved uint64) {
	if a.assertions != nil {
		a.assertions.Assert(context.Background(), lastReserved < uint64(len(a.slots)), "arena: exhausted capacity %d", len(a.slots))
		return
	}
	if lastReserved >= uint64(len(a.slots)) {
		panic("arena: exhausted capacity")
	}
}
