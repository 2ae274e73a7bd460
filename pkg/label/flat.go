package label

import (
	"encoding/binary"
	"unsafe"

	"path_oracle/pkg/graph"
)

// FlatCutIndex is the packed immutable form of a CutIndex: one heap block
// laid out as
//
//	[u64 partition bitvector][u16 dist_index[cutLevel+1]][pad to 4]
//	[u32 distances[L]][u16 paths[L]]
//
// The accessor slices alias the block, so dynamic maintenance mutates the
// distance and path entries in place. One vertex per contraction class owns
// the block; pendant vertices share it by reference.
type FlatCutIndex struct {
	data []byte
}

// aligned4 rounds a byte size up to distance alignment.
func aligned4(size int) int {
	if mod := size & 3; mod != 0 {
		return size + (4 - mod)
	}
	return size
}

// NewFlatCutIndex packs a consistent CutIndex into a fresh block.
func NewFlatCutIndex(ci *CutIndex) FlatCutIndex {
	size := 8 + aligned4(len(ci.DistIndex)*2) + len(ci.Distances)*4 + len(ci.Paths)*2
	f := FlatCutIndex{data: make([]byte, size)}
	binary.LittleEndian.PutUint64(f.data, PBVFrom(ci.Partition, ci.CutLevel))
	copy(f.DistIndex(), ci.DistIndex)
	copy(f.Distances(), ci.Distances)
	copy(f.Paths(), ci.Paths)
	return f
}

// Empty reports whether the index has no backing block.
func (f FlatCutIndex) Empty() bool { return f.data == nil }

// Same reports whether both indexes share one backing block, i.e. the
// vertices belong to the same contraction class.
func (f FlatCutIndex) Same(other FlatCutIndex) bool {
	return unsafe.SliceData(f.data) == unsafe.SliceData(other.data)
}

// PartitionBitvector returns the packed PBV.
func (f FlatCutIndex) PartitionBitvector() uint64 {
	return binary.LittleEndian.Uint64(f.data)
}

// Partition returns the root-to-leaf path bits.
func (f FlatCutIndex) Partition() uint64 { return PBVPartition(f.PartitionBitvector()) }

// CutLevel returns the depth of the vertex's leaf.
func (f FlatCutIndex) CutLevel() uint16 { return PBVCutLevel(f.PartitionBitvector()) }

// DistIndex returns the prefix-sum view, one entry per level 0..cutLevel.
func (f FlatCutIndex) DistIndex() []uint16 {
	return unsafe.Slice((*uint16)(unsafe.Pointer(&f.data[8])), int(f.CutLevel())+1)
}

func (f FlatCutIndex) distancesOffset() int {
	return 8 + aligned4((int(f.CutLevel())+1)*2)
}

// Distances returns the distance label view.
func (f FlatCutIndex) Distances() []graph.Distance {
	count := f.LabelCount()
	if count == 0 {
		return nil
	}
	return unsafe.Slice((*graph.Distance)(unsafe.Pointer(&f.data[f.distancesOffset()])), count)
}

// Paths returns the path count label view, parallel to Distances.
func (f FlatCutIndex) Paths() []uint16 {
	count := f.LabelCount()
	if count == 0 {
		return nil
	}
	off := f.distancesOffset() + count*4
	return unsafe.Slice((*uint16)(unsafe.Pointer(&f.data[off])), count)
}

// LabelCount returns the total number of label entries.
func (f FlatCutIndex) LabelCount() int {
	return int(f.DistIndex()[f.CutLevel()])
}

// Size returns the block size in bytes.
func (f FlatCutIndex) Size() int { return len(f.data) }

// CutSize returns the number of labels contributed by the given level.
func (f FlatCutIndex) CutSize(cutLevel int) int {
	di := f.DistIndex()
	if cutLevel == 0 {
		return int(di[0])
	}
	return int(di[cutLevel] - di[cutLevel-1])
}

// BottomCutSize returns the label count of the vertex's own cut.
func (f FlatCutIndex) BottomCutSize() int { return f.CutSize(int(f.CutLevel())) }

// Unflatten expands the label block back into per-level (distance, count)
// slices, for diagnostics.
func (f FlatCutIndex) Unflatten() [][][2]uint32 {
	di := f.DistIndex()
	dists := f.Distances()
	paths := f.Paths()
	var labels [][][2]uint32
	for cl := 0; cl <= int(f.CutLevel()); cl++ {
		var cut [][2]uint32
		for i := getOffset(di, cl); i < di[cl]; i++ {
			cut = append(cut, [2]uint32{uint32(dists[i]), uint32(paths[i])})
		}
		labels = append(labels, cut)
	}
	return labels
}
