// Package nodes implements the dense, index-addressed collection of
// per-haplotype-position records the search engine branches over.
package nodes

// Node is a single haplotype-position record. Weight, HaploPos, and
// WorstCase are populated once by the loader; HaploValue is the only field
// the search engine mutates, and only from the sequential, post-join phase
// of a search level.
type Node struct {
	// Weight is the significance of this position, consulted by the
	// selector's branching heuristic.
	Weight uint64

	// HaploPos is the position in the output haplotype this node
	// represents.
	HaploPos uint64

	// WorstCase is the worst-case objective contribution known for this
	// position.
	WorstCase uint64

	// HaploValue is the assigned bit (0 or 1), written once the search
	// commits this position.
	HaploValue uint8
}
