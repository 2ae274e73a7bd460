package label

import (
	"slices"

	"path_oracle/pkg/graph"
)

// CutIndex is the mutable per-vertex labeling state filled during hierarchy
// construction and shortcut-graph propagation, later frozen into a
// FlatCutIndex.
type CutIndex struct {
	// Partition accumulates the root-to-leaf path bits (without the length).
	Partition uint64
	// CutLevel is the depth of the vertex's leaf in the decomposition tree.
	CutLevel uint16
	// DistIndex[k] is the total number of labels through level k.
	DistIndex []uint16
	// Distances and Paths are the parallel label arrays, one entry per
	// separator vertex of each ancestor cut.
	Distances []graph.Distance
	Paths     []uint16
}

// Empty reports whether the vertex was never labeled (isolated vertices).
func (ci *CutIndex) Empty() bool { return len(ci.DistIndex) == 0 }

// IsConsistent verifies the labeling invariants. With partial set, the
// checks that only hold for fully built indexes are skipped.
func (ci *CutIndex) IsConsistent(partial bool) bool {
	if ci.CutLevel > MaxCutLevel {
		return false
	}
	if !partial && ci.Partition >= 1<<ci.CutLevel {
		return false
	}
	if !partial && len(ci.DistIndex) != int(ci.CutLevel)+1 {
		return false
	}
	return slices.IsSorted(ci.DistIndex)
}

// getOffset returns the label offset of the given cut level.
func getOffset(distIndex []uint16, cutLevel int) uint16 {
	if cutLevel == 0 {
		return 0
	}
	return distIndex[cutLevel-1]
}
