package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, numNodes int, startNode, startWorstCase uint64, links map[[2]uint64][2]uint64) *Tree {
	t.Helper()
	tree, err := NewTree(numNodes)
	require.NoError(t, err)

	tree.StartNode().Store(startNode)
	tree.MaxWorstCase().Store(startWorstCase)

	for i := 0; i < numNodes; i++ {
		*tree.NodeHaploPos(i) = uint64(i)
	}

	for pair, weights := range links {
		link := tree.CreateLink(pair[0], pair[1])
		link.HomoWeight.Store(weights[0])
		link.HetroWeight.Store(weights[1])
	}

	return tree
}

func haploValues(tree *Tree) []uint8 {
	out := make([]uint8, tree.Nodes().NumNodes())
	for i := range out {
		out[i] = tree.Nodes().At(i).HaploValue
	}
	return out
}

func TestExplore_NumNodesZero(t *testing.T) {
	tree, err := NewTree(0)
	require.NoError(t, err)
	result, err := tree.Explore(context.Background(), 4, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.MinUbound)
	assert.Equal(t, uint64(0), result.NodesAllocated)
}

func TestExplore_NumNodesOne(t *testing.T) {
	tree := buildTree(t, 1, 0, 7, nil)
	_, err := tree.Explore(context.Background(), 4, 8)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), tree.Nodes().At(0).HaploValue)
}

func TestExplore_TrivialTwoPosition_HomoDominates(t *testing.T) {
	tree := buildTree(t, 2, 0, 7, map[[2]uint64][2]uint64{
		{0, 1}: {3, 1}, // homo, hetro
	})
	_, err := tree.Explore(context.Background(), 1, 1)
	require.NoError(t, err)

	values := haploValues(tree)
	assert.Equal(t, values[0], values[1], "homo dominance should agree the pair")
}

func TestExplore_AntiCorrelatedPair_Disagrees(t *testing.T) {
	tree := buildTree(t, 2, 0, 7, map[[2]uint64][2]uint64{
		{0, 1}: {1, 5},
	})
	_, err := tree.Explore(context.Background(), 1, 1)
	require.NoError(t, err)

	values := haploValues(tree)
	assert.NotEqual(t, values[0], values[1], "hetro dominance should disagree the pair")
}

func TestExplore_ChainOfThree(t *testing.T) {
	tree := buildTree(t, 3, 0, 10, map[[2]uint64][2]uint64{
		{0, 1}: {4, 1},
		{1, 2}: {1, 4},
	})
	_, err := tree.Explore(context.Background(), 1, 1)
	require.NoError(t, err)

	values := haploValues(tree)
	assert.Equal(t, values[0], values[1], "0 and 1 should agree")
	assert.NotEqual(t, values[1], values[2], "1 and 2 should disagree")
	assert.NotEqual(t, values[0], values[2], "0 and 2 should disagree")
}

func TestExplore_SymmetricTriangle_TiebreakAllZero(t *testing.T) {
	tree := buildTree(t, 3, 0, 12, map[[2]uint64][2]uint64{
		{0, 1}: {2, 2},
		{0, 2}: {2, 2},
		{1, 2}: {2, 2},
	})
	_, err := tree.Explore(context.Background(), 1, 1)
	require.NoError(t, err)

	values := haploValues(tree)
	for i, v := range values {
		assert.Equal(t, uint8(0), v, "symmetric instance should tiebreak to all-zero at index %d", i)
	}
}

func TestExplore_AllLinksAbsent_Terminates(t *testing.T) {
	tree := buildTree(t, 4, 0, 5, nil)
	_, err := tree.Explore(context.Background(), 2, 4)
	require.NoError(t, err)
}

func TestExplore_ParallelEquivalence(t *testing.T) {
	configs := [][2]int{{1, 1}, {2, 4}, {4, 8}}

	linkSets := map[[2]uint64][2]uint64{
		{0, 1}: {4, 1},
		{1, 2}: {1, 4},
	}

	var bounds []uint64
	for _, cfg := range configs {
		tree := buildTree(t, 3, 0, 10, linkSets)
		result, err := tree.Explore(context.Background(), cfg[0], cfg[1])
		require.NoError(t, err)
		bounds = append(bounds, result.MinUbound)
	}

	for i := 1; i < len(bounds); i++ {
		assert.Equal(t, bounds[0], bounds[i], "objective must match across (BranchCores,OpCores) configurations")
	}
}

func TestExplore_PruneEffectiveness(t *testing.T) {
	links := map[[2]uint64][2]uint64{
		{0, 5}: {100, 100},
		{0, 1}: {1, 1},
		{1, 2}: {1, 1},
		{2, 3}: {1, 1},
		{3, 4}: {1, 1},
		{4, 5}: {1, 1},
	}
	tree := buildTree(t, 6, 0, 120, links)
	result, err := tree.Explore(context.Background(), 2, 4)
	require.NoError(t, err)

	// With a dominant link present, allocation should stay below 2^6
	// SearchNodes, well short of the 2^7-1 of a full binary expansion over
	// six positions. The exact count depends on selection
	// order, so this only asserts pruning is active, not a precise bound.
	assert.Less(t, result.NodesAllocated, uint64(1<<6))
}

func TestExplore_SerialDeterminism(t *testing.T) {
	links := map[[2]uint64][2]uint64{
		{0, 1}: {4, 1},
		{1, 2}: {1, 4},
		{2, 3}: {3, 2},
	}

	run := func() []uint8 {
		tree := buildTree(t, 4, 0, 20, links)
		_, err := tree.Explore(context.Background(), 1, 1)
		require.NoError(t, err)
		return haploValues(tree)
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "serial execution must be deterministic")
}

func TestExplore_CancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree := buildTree(t, 50, 0, 1000, map[[2]uint64][2]uint64{
		{0, 1}: {4, 1},
	})
	_, err := tree.Explore(ctx, 4, 8)
	assert.Error(t, err)
}
