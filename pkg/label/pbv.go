// Package label holds the per-vertex cut labeling: the mutable CutIndex
// built during hierarchy construction, the packed immutable FlatCutIndex
// blocks, and the ContractionIndex answering distance and shortest-path
// count queries in microseconds.
package label

import "math/bits"

// MaxCutLevel is the maximum decomposition tree height: 58 bits store the
// binary root-to-leaf path, 6 bits store its length, together one uint64.
const MaxCutLevel = 58

// A partition bitvector (PBV) packs a vertex's position in the
// decomposition tree: the low 6 bits hold the cut level, the bits above it
// the binary path from the root.

// PBVFrom packs path bits and a path length into a partition bitvector.
func PBVFrom(partition uint64, length uint16) uint64 {
	if length == 0 {
		return 0
	}
	return (partition << (64 - length) >> (58 - length)) | uint64(length)
}

// PBVPartition extracts the path bits.
func PBVPartition(bv uint64) uint64 { return bv >> 6 }

// PBVCutLevel extracts the path length.
func PBVCutLevel(bv uint64) uint16 { return uint16(bv & 63) }

// LCALevel returns the deepest level at which the two vertices still share
// an ancestor cut: the lowest level where their paths differ, capped by the
// shorter path.
func LCALevel(bv1, bv2 uint64) uint16 {
	lca := min(PBVCutLevel(bv1), PBVCutLevel(bv2))
	p1, p2 := PBVPartition(bv1), PBVPartition(bv2)
	if p1 != p2 {
		if diff := uint16(bits.TrailingZeros64(p1 ^ p2)); diff < lca {
			lca = diff
		}
	}
	return lca
}

// LCA returns the partition bitvector of the lowest common ancestor cut.
func LCA(bv1, bv2 uint64) uint64 {
	cutLevel := LCALevel(bv1, bv2)
	// a shift by 64 must not be relied upon
	if cutLevel == 0 {
		return 0
	}
	return (bv1>>6)<<(64-cutLevel)>>(58-cutLevel) | uint64(cutLevel)
}

// IsAncestor reports whether the first cut lies on the root path of the
// second vertex.
func IsAncestor(bvAncestor, bvDescendant uint64) bool {
	cla, cld := PBVCutLevel(bvAncestor), PBVCutLevel(bvDescendant)
	// a shift by 64 must not be relied upon, so level 0 is special-cased
	return cla == 0 || (cla <= cld && (bvAncestor^bvDescendant)>>6<<(64-cla) == 0)
}
