package links

import (
	"context"
	"fmt"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	roaring "github.com/RoaringBitmap/roaring"
)

// pairKey is the ordered key of a Link: lower strictly less than upper.
type pairKey struct {
	lower uint32
	upper uint32
}

// Container is the sparse (lower, upper) -> Link mapping. Alongside the map
// it keeps a pair of roaring-bitmap adjacency indexes (by-lower and
// by-upper) so IncidentPairs can answer "every link touching index i"
// without a linear scan, the same pattern the teacher uses to keep
// attribute-value lookups sublinear.
type Container struct {
	mu         sync.RWMutex
	links      map[pairKey]*Link
	byLower    map[uint32]*roaring.Bitmap // lower -> bitmap of uppers
	byUpper    map[uint32]*roaring.Bitmap // upper -> bitmap of lowers
	assertions *assert.AssertHandler
}

// NewContainer creates an empty Link container.
func NewContainer(assertions *assert.AssertHandler) *Container {
	return &Container{
		links:      make(map[pairKey]*Link),
		byLower:    make(map[uint32]*roaring.Bitmap),
		byUpper:    make(map[uint32]*roaring.Bitmap),
		assertions: assertions,
	}
}

func (c *Container) checkOrder(lower, upper uint64) (uint32, uint32) {
	if c.assertions != nil {
		c.assertions.Assert(context.Background(), lower < upper, "links: lower index %d must be strictly less than upper index %d", lower, upper)
	} else if lower >= upper {
		panic("links: lower index must be strictly less than upper index")
	}
	return uint32(lower), uint32(upper)
}

// Insert creates the Link for (lower, upper) if absent. It is idempotent:
// calling it twice for the same pair never duplicates the record.
func (c *Container) Insert(lower, upper uint64) *Link {
	l, u := c.checkOrder(lower, upper)
	key := pairKey{l, u}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.links[key]; ok {
		return existing
	}

	link := &Link{}
	c.links[key] = link

	lowerBM, ok := c.byLower[l]
	if !ok {
		lowerBM = roaring.New()
		c.byLower[l] = lowerBM
	}
	lowerBM.Add(u)

	upperBM, ok := c.byUpper[u]
	if !ok {
		upperBM = roaring.New()
		c.byUpper[u] = upperBM
	}
	upperBM.Add(l)

	return link
}

// Exists reports whether a Link has been created for (lower, upper).
func (c *Container) Exists(lower, upper uint64) bool {
	l, u := c.checkOrder(lower, upper)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.links[pairKey{l, u}]
	return ok
}

// At returns the Link for (lower, upper). Calling it on a missing pair is
// caller error — the engine only does so after checking Exists first.
func (c *Container) At(lower, upper uint64) *Link {
	l, u := c.checkOrder(lower, upper)
	c.mu.RLock()
	defer c.mu.RUnlock()

	link, ok := c.links[pairKey{l, u}]
	if !ok {
		msg := fmt.Sprintf("links: At called on absent pair (%d,%d)", lower, upper)
		if c.assertions != nil {
			c.assertions.Assert(context.Background(), false, msg)
		}
		panic(msg)
	}
	return link
}

// LinkMax is a convenience that returns the Link's Value(), or 0 if the
// pair has no Link.
func (c *Container) LinkMax(lower, upper uint64) uint64 {
	if !c.Exists(lower, upper) {
		return 0
	}
	return c.At(lower, upper).Value()
}

// Iterate calls fn for every present (lower, upper) pair. Readers are
// concurrent-safe with each other; no structural mutation happens during
// search.
func (c *Container) Iterate(fn func(lower, upper uint64, link *Link)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, link := range c.links {
		fn(uint64(key.lower), uint64(key.upper), link)
	}
}

// IncidentPairs returns every (lower, upper) pair where idx is one of the
// two endpoints, in no particular order. This is the Bounder's primary
// entry point: the set of Links it must sum over for a given haplo index.
func (c *Container) IncidentPairs(idx uint64) []Pair {
	id := uint32(idx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var pairs []Pair
	if bm, ok := c.byLower[id]; ok {
		it := bm.Iterator()
		for it.HasNext() {
			upper := it.Next()
			pairs = append(pairs, Pair{Lower: uint64(id), Upper: uint64(upper)})
		}
	}
	if bm, ok := c.byUpper[id]; ok {
		it := bm.Iterator()
		for it.HasNext() {
			lower := it.Next()
			pairs = append(pairs, Pair{Lower: uint64(lower), Upper: uint64(id)})
		}
	}
	return pairs
}

// Pair identifies a Link by its ordered endpoints.
type Pair struct {
	Lower uint64
	Upper uint64
}
