package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robclu/paraHaplo/haplo/links"
	"github.com/robclu/paraHaplo/haplo/nodes"
)

func TestNodeSelector_StartNodeFirst(t *testing.T) {
	n := nodes.NewContainer(3, nil)
	l := links.NewContainer(nil)

	sel := NewNodeSelector(n, l, 1)
	require.Equal(t, uint64(1), sel.SelectNode())
}

func TestNodeSelector_OrdersByDescendingScore(t *testing.T) {
	n := nodes.NewContainer(3, nil)
	*n.Weight(0) = 1
	*n.Weight(1) = 100
	*n.Weight(2) = 50
	l := links.NewContainer(nil)

	sel := NewNodeSelector(n, l, 0)

	first := sel.SelectNode()  // start node, always index 0
	second := sel.SelectNode() // highest remaining score: index 1
	third := sel.SelectNode()  // index 2

	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)
	assert.Equal(t, uint64(2), third)
}

func TestNodeSelector_LastSearchIndexIsStable(t *testing.T) {
	n := nodes.NewContainer(4, nil)
	l := links.NewContainer(nil)

	sel := NewNodeSelector(n, l, 0)
	last := sel.LastSearchIndex()

	for i := 0; i < 3; i++ {
		sel.SelectNode()
	}
	assert.Equal(t, last, sel.SelectNode())
	assert.Equal(t, last, sel.SelectNode(), "selector must not advance past the last index")
}
