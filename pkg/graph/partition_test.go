package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridGraph builds an m×m grid with unit weights, vertices numbered row by
// row starting at 1.
func gridGraph(m int) *Graph {
	g := New(m * m)
	id := func(r, c int) NodeID { return NodeID(r*m + c + 1) }
	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			if c+1 < m {
				g.AddEdge(id(r, c), id(r, c+1), 1, true)
			}
			if r+1 < m {
				g.AddEdge(id(r, c), id(r+1, c), 1, true)
			}
		}
	}
	return g
}

// checkPartition verifies the tripartition covers the view and that
// removing the cut disconnects left from right.
func checkPartition(t *testing.T, g *Graph, p *Partition) {
	t.Helper()
	total := len(p.Left) + len(p.Cut) + len(p.Right)
	require.Equal(t, g.NodeCount(), total)
	seen := map[NodeID]bool{}
	for _, part := range [][]NodeID{p.Left, p.Cut, p.Right} {
		for _, v := range part {
			require.False(t, seen[v], "vertex %d assigned twice", v)
			seen[v] = true
		}
	}
	if len(p.Left) > 0 && len(p.Right) > 0 {
		assert.True(t, separates(g, g.Nodes(), p.Cut, p.Left, p.Right),
			"cut does not separate the sides")
	}
}

func TestCreatePartitionPath(t *testing.T) {
	g := pathGraph(9, 1)
	var p Partition
	g.CreatePartition(&p, 0.2, true)
	checkPartition(t, g, &p)
	assert.NotEmpty(t, p.Cut)
	assert.LessOrEqual(t, len(p.Cut), 2)
}

func TestCreatePartitionGrid(t *testing.T) {
	g := gridGraph(5)
	var p Partition
	g.CreatePartition(&p, 0.2, true)
	checkPartition(t, g, &p)
	// a 5x5 grid has a minimum balanced separator of at most one column
	assert.LessOrEqual(t, len(p.Cut), 5)
	assert.GreaterOrEqual(t, min(len(p.Left), len(p.Right)), 4)
}

func TestCreatePartitionDisconnected(t *testing.T) {
	g := New(6)
	g.AddEdge(1, 2, 1, true)
	g.AddEdge(2, 3, 1, true)
	g.AddEdge(4, 5, 1, true)
	g.AddEdge(5, 6, 1, true)
	var p Partition
	g.CreatePartition(&p, 0.2, true)
	checkPartition(t, g, &p)
	// balanced components need no cut at all
	assert.Empty(t, p.Cut)
	assert.Equal(t, 3, len(p.Left))
	assert.Equal(t, 3, len(p.Right))
}

func TestRoughPartitionBounds(t *testing.T) {
	g := gridGraph(4)
	var p Partition
	fine := g.RoughPartition(&p, 0.25, false)
	if !fine {
		require.NotEmpty(t, p.Left)
		require.NotEmpty(t, p.Right)
		total := len(p.Left) + len(p.Cut) + len(p.Right)
		assert.Equal(t, g.NodeCount(), total)
	}
	g.AssignNodes()
	require.True(t, g.IsConsistent())
}
