package search

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/robclu/paraHaplo/haplo/links"
	"github.com/robclu/paraHaplo/haplo/nodes"
)

// NodeSelector picks the next haplo-position to branch on. The order is
// computed once, up front, from a static priority derived from each node's
// weight and the value of its incident links — higher-influence positions
// first, ties broken by ascending node index. Calls to SelectNode are
// sequential from the driver, one per recursion level.
type NodeSelector struct {
	order []uint64 // Node-container indices, highest priority first
	next  int
}

// NewNodeSelector builds the selection order. startNode is always placed
// first, matching spec.md §4.6's seeding of the root at the configured
// start position; the remaining positions are ranked by descending score.
func NewNodeSelector(n *nodes.Container, l *links.Container, startNode uint64) *NodeSelector {
	num := n.NumNodes()
	scores := make([]float64, num)
	for i := 0; i < num; i++ {
		incident := l.IncidentPairs(uint64(i))
		values := make([]float64, 0, len(incident))
		for _, pair := range incident {
			values = append(values, float64(l.LinkMax(pair.Lower, pair.Upper)))
		}
		weight := float64(*n.Weight(i))
		scores[i] = weight + floats.Sum(values)
	}

	order := make([]uint64, 0, num)
	for i := 0; i < num; i++ {
		if uint64(i) != startNode {
			order = append(order, uint64(i))
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	full := make([]uint64, 0, num)
	if num > 0 {
		full = append(full, startNode)
	}
	full = append(full, order...)

	return &NodeSelector{order: full}
}

// SelectNode returns the index of the next position to branch on. It is
// deterministic and progress-making: every call returns a
// previously-unselected position until LastSearchIndex is reached, and
// every call after that returns LastSearchIndex again.
func (s *NodeSelector) SelectNode() uint64 {
	idx := s.order[s.next]
	if s.next < len(s.order)-1 {
		s.next++
	}
	return idx
}

// LastSearchIndex returns the Node-container index at which the frontier
// exhausts all positions — the recursion's terminal condition.
func (s *NodeSelector) LastSearchIndex() uint64 {
	return s.order[len(s.order)-1]
}
