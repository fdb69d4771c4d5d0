package search

import (
	"sync"
	"sync/atomic"

	"github.com/robclu/paraHaplo/haplo/arena"
	"github.com/robclu/paraHaplo/haplo/links"
	"github.com/robclu/paraHaplo/haplo/nodes"
)

// Resolver reports the committed branch value of another haplo position
// along the current search path, if that position has already been decided
// there. A Bounder never has its own view of the path — it is handed a
// Resolver closure by the caller, which walks the SearchNode ancestry.
type Resolver func(other uint64) (value uint8, decided bool)

// Bounder computes the (lower, upper) bound deltas a candidate SearchNode
// applies to its parent's accumulated bound window. Calculate distributes
// the sum over the position's incident links across boundThreads workers —
// a blocked range over the incident-link slice, mirroring tbb::blocked_range
// — then reduces, the same bounded-fan-out-then-reduce shape as a batch
// file operation split across a worker semaphore.
type Bounder struct {
	nodes *nodes.Container
	links *links.Container
}

// NewBounder creates a Bounder over the given containers.
func NewBounder(n *nodes.Container, l *links.Container) *Bounder {
	return &Bounder{nodes: n, links: l}
}

// Calculate folds every Link incident to haploIdx into a (lower, upper)
// delta for the candidate branch's bound window. A Link's cost is only
// realized once both of its endpoints have committed a value along the
// current path: resolve reports the other endpoint's value when it has.
// Until then the Link contributes nothing — its cost is deferred to
// whichever endpoint is decided second, so it is never double-counted.
//
// Once realized, a Link that ends up with its two endpoints equal spends
// HetroWeight (the cost of the evidence it now contradicts); a Link that
// ends up with its endpoints unequal spends HomoWeight. A realized Link
// contributes the same amount to both lower and upper — there is no
// remaining uncertainty about it — so the delta is symmetric, not a
// min/max spread.
func (b *Bounder) Calculate(haploIdx uint64, branch arena.Branch, boundThreads int, resolve Resolver) (lower, upper uint64) {
	pairs := b.links.IncidentPairs(haploIdx)
	if len(pairs) == 0 {
		return 0, 0
	}
	if boundThreads < 1 {
		boundThreads = 1
	}
	if boundThreads > len(pairs) {
		boundThreads = len(pairs)
	}

	branchValue := uint8(0)
	if branch == arena.Right {
		branchValue = 1
	}

	var lowerTotal, upperTotal uint64
	var wg sync.WaitGroup

	blockSize := (len(pairs) + boundThreads - 1) / boundThreads
	for w := 0; w < boundThreads; w++ {
		start := w * blockSize
		if start >= len(pairs) {
			break
		}
		end := start + blockSize
		if end > len(pairs) {
			end = len(pairs)
		}

		wg.Add(1)
		go func(block []links.Pair) {
			defer wg.Done()

			var localLower, localUpper uint64
			for _, pair := range block {
				other := pair.Upper
				if other == haploIdx {
					other = pair.Lower
				}

				otherValue, decided := resolve(other)
				if !decided {
					continue // other endpoint not yet on the path: deferred to it
				}

				link := b.links.At(pair.Lower, pair.Upper)
				var realized uint64
				if branchValue == otherValue {
					realized = link.HetroWeight.Load()
				} else {
					realized = link.HomoWeight.Load()
				}
				localLower += realized
				localUpper += realized
			}
			atomic.AddUint64(&lowerTotal, localLower)
			atomic.AddUint64(&upperTotal, localUpper)
		}(pairs[start:end])
	}

	wg.Wait()
	return lowerTotal, upperTotal
}
