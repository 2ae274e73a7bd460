package label

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"path_oracle/pkg/graph"
)

func TestPBVPackUnpack(t *testing.T) {
	bv := PBVFrom(0b1011, 4)
	assert.Equal(t, uint16(4), PBVCutLevel(bv))
	assert.Equal(t, uint64(0b1011), PBVPartition(bv))

	assert.Equal(t, uint64(0), PBVFrom(0b1011, 0))
	assert.Equal(t, uint16(0), PBVCutLevel(0))
	assert.Equal(t, uint64(0), PBVPartition(0))
}

func TestPBVMasksHighBits(t *testing.T) {
	// bits above the cut level are dropped during packing
	bv := PBVFrom(0b111111, 2)
	assert.Equal(t, uint64(0b11), PBVPartition(bv))
	assert.Equal(t, uint16(2), PBVCutLevel(bv))
}

func TestLCALevel(t *testing.T) {
	a := PBVFrom(0b0101, 4)
	b := PBVFrom(0b0111, 4)
	// lowest differing bit is bit 1
	assert.Equal(t, uint16(1), LCALevel(a, b))
	// identical paths meet at the shorter cut level
	c := PBVFrom(0b01, 2)
	d := PBVFrom(0b0101, 4)
	assert.Equal(t, uint16(2), LCALevel(c, d))
	assert.Equal(t, uint16(0), LCALevel(0, d))
	assert.Equal(t, uint16(4), LCALevel(d, d))
}

func TestLCA(t *testing.T) {
	a := PBVFrom(0b0101, 4)
	b := PBVFrom(0b0111, 4)
	assert.Equal(t, PBVFrom(0b1, 1), LCA(a, b))
	// level 0 meet returns the empty bitvector
	assert.Equal(t, uint64(0), LCA(PBVFrom(0, 1), PBVFrom(1, 1)))
}

func TestIsAncestor(t *testing.T) {
	root := uint64(0)
	mid := PBVFrom(0b01, 2)
	leaf := PBVFrom(0b1101, 4)
	assert.True(t, IsAncestor(root, leaf))
	assert.True(t, IsAncestor(mid, leaf))
	assert.True(t, IsAncestor(leaf, leaf))
	assert.False(t, IsAncestor(leaf, mid))
	assert.False(t, IsAncestor(PBVFrom(0b10, 2), leaf))
}

func TestFlatCutIndexLayout(t *testing.T) {
	ci := CutIndex{
		Partition: 0b10,
		CutLevel:  2,
		DistIndex: []uint16{1, 3, 5},
		Distances: []graph.Distance{4, 7, 9, 0, 2},
		Paths:     []uint16{1, 2, 1, 1, 3},
	}
	f := NewFlatCutIndex(&ci)
	assert.Equal(t, uint16(2), f.CutLevel())
	assert.Equal(t, uint64(0b10), f.Partition())
	assert.Equal(t, []uint16{1, 3, 5}, f.DistIndex())
	assert.Equal(t, []graph.Distance{4, 7, 9, 0, 2}, f.Distances())
	assert.Equal(t, []uint16{1, 2, 1, 1, 3}, f.Paths())
	assert.Equal(t, 5, f.LabelCount())
	assert.Equal(t, 1, f.CutSize(0))
	assert.Equal(t, 2, f.CutSize(1))
	assert.Equal(t, 2, f.BottomCutSize())
	// 8 (pbv) + 8 (3 u16 padded) + 20 (distances) + 10 (paths)
	assert.Equal(t, 46, f.Size())
}
