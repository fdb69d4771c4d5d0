// Package search implements the concurrent branch-and-bound driver: the
// node selector, the bound calculator, and the Tree that owns them and
// runs the recursive parallel exploration.
package search

import (
	"context"
	"fmt"
	"log/slog"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/atomic"

	"github.com/robclu/paraHaplo/haplo/arena"
	"github.com/robclu/paraHaplo/haplo/links"
	"github.com/robclu/paraHaplo/haplo/nodes"
)

// arenaSlotsPerNode bounds how many SearchNodes a single haplo position can
// generate across the search: itself plus both children at every level it
// survives to. This is a practical upper bound, not a tight one — the
// search prunes long before most positions reach it.
const arenaSlotsPerNode = 4

// Tree is the top-level aggregate: it owns the Node container and the Link
// container permanently, and — for the duration of one Explore call — the
// arena, selector, and bounder that make up the search. SearchNodes are
// always referenced by arena index, never by pointer.
type Tree struct {
	nodesContainer *nodes.Container
	linksContainer *links.Container

	startNode      atomic.Uint64
	startWorstCase atomic.Uint64

	logger     *slog.Logger
	assertions *assert.AssertHandler
}

// Option configures a Tree at construction.
type Option func(*Tree)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// NewTree creates a Tree over numNodes haplo positions.
func NewTree(numNodes int, opts ...Option) (*Tree, error) {
	if numNodes < 0 {
		return nil, fmt.Errorf("search: numNodes must be >= 0, got %d", numNodes)
	}

	assertions := assert.NewAssertHandler()
	t := &Tree{
		nodesContainer: nodes.NewContainer(numNodes, assertions),
		linksContainer: links.NewContainer(assertions),
		logger:         slog.Default(),
		assertions:     assertions,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Nodes returns the tree's Node container.
func (t *Tree) Nodes() *nodes.Container { return t.nodesContainer }

// Links returns the tree's Link container.
func (t *Tree) Links() *links.Container { return t.linksContainer }

// CreateLink creates (idempotently) the Link between lower and upper.
func (t *Tree) CreateLink(lower, upper uint64) *links.Link {
	return t.linksContainer.Insert(lower, upper)
}

// NodeWeight returns a mutable reference to node i's weight.
func (t *Tree) NodeWeight(i int) *uint64 { return t.nodesContainer.Weight(i) }

// NodeHaploPos returns a mutable reference to node i's haplotype position.
func (t *Tree) NodeHaploPos(i int) *uint64 { return t.nodesContainer.HaploPos(i) }

// MaxWorstCase returns a mutable reference to the root's worst-case
// objective, used to seed the initial global upper bound.
func (t *Tree) MaxWorstCase() *atomic.Uint64 { return &t.startWorstCase }

// StartNode returns a mutable reference to the initial haplo-position index
// to branch on.
func (t *Tree) StartNode() *atomic.Uint64 { return &t.startNode }

// Result reports the outcome of one Explore run.
type Result struct {
	// MinUbound is the final global upper bound: the smallest UpperBound
	// published by any unpruned SearchNode during the search, where each
	// UpperBound is the seeded worst case less the link costs realized
	// along that node's path.
	MinUbound uint64
	// NodesAllocated is the arena high-water mark — the total number of
	// SearchNodes the search actually materialized.
	NodesAllocated uint64
}

// Explore runs the branch-and-bound search to completion. branchCores
// bounds the outer, per-level branch parallelism; opCores bounds the total
// workers active at once across branch parallelism and the inner bound
// computation together. After Explore returns without error, every Node
// carries its HaploValue. If ctx is cancelled during the search, Explore
// returns the context error and no Node's HaploValue is written.
func (t *Tree) Explore(ctx context.Context, branchCores, opCores int) (Result, error) {
	numNodes := t.nodesContainer.NumNodes()
	if numNodes == 0 {
		return Result{}, nil // spec boundary: num_nodes = 0 is a no-op
	}
	if branchCores < 1 {
		branchCores = 1
	}
	if opCores < 1 {
		opCores = 1
	}

	runID := uuid.New()
	logger := t.logger.With("run_id", runID.String(), "num_nodes", numNodes)
	metrics := NewMetrics()
	defer metrics.Finish()

	startNode := t.startNode.Load()
	startWorstCase := t.startWorstCase.Load()

	manager := arena.NewArena(numNodes*arenaSlotsPerNode+3, t.assertions)
	selector := NewNodeSelector(t.nodesContainer, t.linksContainer, startNode)
	bounder := NewBounder(t.nodesContainer, t.linksContainer)

	rootIdx := manager.GetNextNode()  // 0
	leftIdx := manager.GetNextNode()  // 1
	rightIdx := manager.GetNextNode() // 2

	root := manager.Node(rootIdx)
	root.Index = startNode
	root.LowerBound = 0
	root.UpperBound = startWorstCase
	root.Left, root.Right = leftIdx, rightIdx

	left := manager.Node(leftIdx)
	left.Type = arena.Left
	left.Root = rootIdx
	left.LowerBound, left.UpperBound = 0, startWorstCase

	right := manager.Node(rightIdx)
	right.Type = arena.Right
	right.Root = rootIdx
	right.LowerBound, right.UpperBound = 0, startWorstCase

	minUbound := NewSharedBound(startWorstCase)

	if numNodes == 1 {
		// Only the root frontier exists, nothing left to branch on.
		return Result{MinUbound: minUbound.Load(), NodesAllocated: manager.HighWater()}, nil
	}

	logger.Info("exploring tree", "branch_cores", branchCores, "op_cores", opCores, "start_worst_case", startWorstCase)

	_, err := t.searchSubnodes(ctx, manager, selector, bounder, minUbound, branchCores, opCores, leftIdx, 2, logger, metrics)

	result := Result{MinUbound: minUbound.Load(), NodesAllocated: manager.HighWater()}

	snapshot := metrics.Snapshot()
	logger.Info("exploration finished",
		"min_ubound", result.MinUbound,
		"levels", snapshot.LevelsProcessed,
		"nodes_allocated", result.NodesAllocated,
		"nodes_expanded", snapshot.NodesExpanded,
		"nodes_pruned", snapshot.NodesPruned,
		"duration", snapshot.Duration)

	return result, err
}

// searchSubnodes is the recursion engine. startIndex is the arena index of
// the first SearchNode in this level's frontier; numSubnodes is the
// frontier's size. It evaluates the frontier in parallel, spawns children
// for survivors, then recurses on the next level using the number of
// branches actually spawned — not the frontier size — as the next level's
// size. It returns the arena index of the winning SearchNode *for this
// level*: either its own locally-best candidate, or — once the deeper
// levels have resolved — the frontier node whose subtree produced the
// overall winner, recovered by following that winner's Root link back up
// to this level.
func (t *Tree) searchSubnodes(
	ctx context.Context,
	manager *arena.Arena,
	selector *NodeSelector,
	bounder *Bounder,
	minUbound *SharedBound,
	branchCores, opCores int,
	startIndex, numSubnodes uint64,
	logger *slog.Logger,
	metrics *Metrics,
) (uint64, error) {
	branchCoresForLevel := branchCores
	if uint64(branchCoresForLevel) > numSubnodes {
		branchCoresForLevel = int(numSubnodes)
	}
	boundThreads := opCores / branchCores
	if boundThreads < 1 {
		boundThreads = 1
	}

	numBranches := atomic.NewUint64(0)
	minLbound := NewSharedBound(^uint64(0))
	bestIndex := atomic.NewUint64(0)

	searchIdx := selector.SelectNode()
	haploIdx := *t.nodesContainer.HaploPos(int(searchIdx))
	lastIdx := selector.LastSearchIndex()
	isTerminal := searchIdx == lastIdx

	if branchCoresForLevel > 0 {
		p := pool.New().WithMaxGoroutines(branchCoresForLevel).WithContext(ctx)

		for threadID := uint64(0); threadID < uint64(branchCoresForLevel); threadID++ {
			threadID := threadID
			p.Go(func(ctx context.Context) error {
				iters := strideIterations(threadID, numSubnodes, uint64(branchCoresForLevel))
				for it := uint64(0); it < iters; it++ {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}

					nodeIdx := startIndex + it*uint64(branchCoresForLevel) + threadID
					node := manager.Node(nodeIdx)
					node.Index = searchIdx

					if node.Type == arena.Left {
						node.Value = 0
					} else {
						node.Value = 1
					}

					resolve := func(other uint64) (uint8, bool) {
						return t.ancestorHaploValue(manager, node, other)
					}
					lowerDelta, upperDelta := bounder.Calculate(haploIdx, node.Type, boundThreads, resolve)

					if upperDelta > node.UpperBound {
						node.UpperBound = 0 // clamp: the window cannot invert
					} else {
						node.UpperBound -= upperDelta
					}
					node.LowerBound += lowerDelta
					if node.LowerBound > node.UpperBound {
						node.LowerBound = node.UpperBound
					}

					pruned := node.LowerBound > minUbound.Load()
					if !pruned {
						minUbound.UpdateMin(node.UpperBound)
						minLbound.UpdateMin(node.LowerBound)
						if node.LowerBound == minLbound.Load() {
							updateBestIndex(manager, bestIndex, nodeIdx, node.LowerBound)
						}
					}

					if pruned || isTerminal {
						continue // no children: pruned, or nothing left to branch on
					}

					leftChildIdx, rightChildIdx := manager.ReservePair()
					inheritedLower, inheritedUpper := node.Bounds()

					leftChild := manager.Node(leftChildIdx)
					leftChild.SetBounds(inheritedLower, inheritedUpper)
					leftChild.Root = nodeIdx
					leftChild.Type = arena.Left

					rightChild := manager.Node(rightChildIdx)
					rightChild.SetBounds(inheritedLower, inheritedUpper)
					rightChild.Root = nodeIdx
					rightChild.Type = arena.Right

					numBranches.Add(2)
				}
				return nil
			})
		}

		if err := p.Wait(); err != nil {
			return bestIndex.Load(), err
		}
	}

	branches := numBranches.Load()
	metrics.RecordLevel(int64(branches/2), int64(numSubnodes-branches/2))

	logger.Debug("level evaluated",
		"search_idx", searchIdx,
		"haplo_idx", haploIdx,
		"min_lbound", minLbound.Load(),
		"min_ubound", minUbound.Load(),
		"branches", branches)

	winningIdx := bestIndex.Load()
	if branches > 0 && !isTerminal {
		deepestBest, err := t.searchSubnodes(ctx, manager, selector, bounder, minUbound, branchCores, opCores, startIndex+numSubnodes, branches, logger, metrics)
		if err != nil {
			return winningIdx, err
		}
		// deepestBest's Root is the SearchNode at THIS level that led to it:
		// the winning decision at this level is recovered, not overwritten.
		winningIdx = manager.Node(deepestBest).Root
	}

	best := manager.Node(winningIdx)
	committed := t.nodesContainer.At(int(searchIdx))
	committed.HaploValue = best.Value

	return winningIdx, nil
}

// ancestorHaploValue walks node's Root chain looking for a SearchNode that
// branched on haplo position target, returning its committed branch value.
// Arena index 0 is the bootstrap seed, never a real decision, so the walk
// stops there rather than inspecting it.
func (t *Tree) ancestorHaploValue(manager *arena.Arena, node *arena.SearchNode, target uint64) (uint8, bool) {
	for idx := node.Root; idx != 0; {
		ancestor := manager.Node(idx)
		if *t.nodesContainer.HaploPos(int(ancestor.Index)) == target {
			return ancestor.Value, true
		}
		idx = ancestor.Root
	}
	return 0, false
}

// updateBestIndex applies the deterministic secondary tiebreaker spec.md §5
// recommends: among SearchNodes tied on the level-minimum lower bound, keep
// the smallest arena index. Candidates are compared by their actual
// LowerBound, not merely by index — an index comparison alone could keep a
// stale, strictly-worse candidate simply because it was reserved earlier.
func updateBestIndex(manager *arena.Arena, bestIndex *atomic.Uint64, candidate, candidateLower uint64) {
	for {
		current := bestIndex.Load()
		if current != 0 {
			currentLower := manager.Node(current).LowerBound
			if currentLower < candidateLower {
				return
			}
			if currentLower == candidateLower && current <= candidate {
				return
			}
		}
		if bestIndex.CAS(current, candidate) {
			return
		}
	}
}

// strideIterations computes how many of the strided, block-cyclic frontier
// slots (node_idx = start + it*workers + threadID) thread threadID owns,
// out of total items split across workers workers.
func strideIterations(threadID, total, workers uint64) uint64 {
	if workers == 0 {
		return 0
	}
	base := total / workers
	rem := total % workers
	if threadID < rem {
		return base + 1
	}
	return base
}
