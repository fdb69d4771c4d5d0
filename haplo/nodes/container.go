package nodes

import (
	"context"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
)

// Container is the dense, indexed collection of Node records. Its size is
// fixed after Resize; accessors return addressable pointers so callers can
// treat individual scalar fields as mutable references, mirroring the
// loader's direct-populate contract.
type Container struct {
	mu         sync.RWMutex
	nodes      []Node
	assertions *assert.AssertHandler
}

// NewContainer creates a Container sized to n Node records. n == 0 is a
// valid, empty container (spec boundary: num_nodes = 0).
func NewContainer(n int, assertions *assert.AssertHandler) *Container {
	return &Container{
		nodes:      make([]Node, n),
		assertions: assertions,
	}
}

// Resize grows or shrinks the container to exactly n records. It is
// idempotent if the container is already sized to n.
func (c *Container) Resize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.nodes) == n {
		return
	}
	resized := make([]Node, n)
	copy(resized, c.nodes)
	c.nodes = resized
}

// NumNodes returns the current size of the container.
func (c *Container) NumNodes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// At returns a mutable reference to the Node at index i. Accessing an
// out-of-range index is a programming error per spec and aborts via the
// assertion handler rather than returning an error.
func (c *Container) At(i int) *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.checkBounds(i)
	return &c.nodes[i]
}

// Weight returns a mutable reference to the weight of the node at index i.
func (c *Container) Weight(i int) *uint64 {
	return &c.At(i).Weight
}

// WorstCaseValue returns a mutable reference to the worst-case value of the
// node at index i.
func (c *Container) WorstCaseValue(i int) *uint64 {
	return &c.At(i).WorstCase
}

// HaploPos returns a mutable reference to the haplotype position of the
// node at index i.
func (c *Container) HaploPos(i int) *uint64 {
	return &c.At(i).HaploPos
}

func (c *Container) checkBounds(i int) {
	if c.assertions != nil {
		c.assertions.Assert(context.Background(), i >= 0 && i < len(c.nodes), "nodes: index %d out of range [0,%d)", i, len(c.nodes))
		return
	}
	if i < 0 || i >= len(c.nodes) {
		panic("nodes: index out of range")
	}
}
