// Package links implements the sparse, order-sensitive mapping from pairs
// of haplotype-position indices to their pairwise penalty weights.
package links

import "go.uber.org/atomic"

// Link holds the pairwise homozygous/heterozygous penalty weights between
// two haplotype positions. Both weights are atomic because the loader may
// accumulate them from multiple concurrent observations; during search
// they are read-only.
type Link struct {
	HomoWeight  atomic.Uint64
	HetroWeight atomic.Uint64
}

// Value returns the larger of the two weights. The NodeSelector sums it
// over a position's incident links to rank positions; the Bounder reads
// HomoWeight and HetroWeight directly instead.
func (l *Link) Value() uint64 {
	homo, hetro := l.HomoWeight.Load(), l.HetroWeight.Load()
	if homo > hetro {
		return homo
	}
	return hetro
}
