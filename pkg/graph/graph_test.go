package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathGraph builds 1-2-...-n with the given uniform weight.
func pathGraph(n int, w Distance) *Graph {
	g := New(n)
	for v := 1; v < n; v++ {
		g.AddEdge(NodeID(v), NodeID(v+1), w, true)
	}
	return g
}

func TestAddEdgeKeepsMinimum(t *testing.T) {
	g := New(3)
	g.AddEdge(1, 2, 5, true)
	g.AddEdge(1, 2, 3, true)
	g.AddEdge(2, 1, 7, true)
	require.True(t, g.IsUndirected())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, Distance(3), g.Neighbors(1)[0].Distance)
	assert.Equal(t, Distance(3), g.Neighbors(2)[0].Distance)
}

func TestSubgraphStamping(t *testing.T) {
	g := pathGraph(5, 1)
	require.True(t, g.IsConsistent())
	sub := g.Subgraph([]NodeID{2, 3})
	assert.True(t, sub.Contains(2))
	assert.True(t, sub.Contains(3))
	assert.False(t, sub.Contains(1))
	// members left the parent view
	assert.False(t, g.Contains(2))
	g.AssignNodes()
	assert.True(t, g.Contains(2))
	require.True(t, g.IsConsistent())
}

func TestDegreeAndSingleNeighbor(t *testing.T) {
	g := pathGraph(4, 1)
	assert.Equal(t, 1, g.Degree(1))
	assert.Equal(t, 2, g.Degree(2))
	assert.Equal(t, NodeID(2), g.SingleNeighbor(1).Node)
	assert.Equal(t, NoNode, g.SingleNeighbor(2).Node)

	// degree is filtered by membership
	sub := g.Subgraph([]NodeID{2, 3})
	assert.Equal(t, 1, sub.Degree(2))
	assert.Equal(t, NodeID(3), sub.SingleNeighbor(2).Node)
}

func TestRemoveNodesAndReset(t *testing.T) {
	g := pathGraph(5, 1)
	g.RemoveNodes([]NodeID{2, 4})
	assert.Equal(t, 3, g.NodeCount())
	assert.False(t, g.Contains(2))
	g.Reset()
	assert.Equal(t, 5, g.NodeCount())
	assert.True(t, g.Contains(2))
}

func TestRemoveIsolated(t *testing.T) {
	g := New(4)
	g.AddEdge(1, 2, 1, true)
	g.RemoveIsolated()
	assert.Equal(t, 2, g.NodeCount())
	assert.False(t, g.Contains(3))
	assert.False(t, g.Contains(4))
}

func TestContractPath(t *testing.T) {
	g := pathGraph(5, 2)
	closest := g.Contract()
	// the whole path collapses onto its center
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, NodeID(3), g.Nodes()[0])
	assert.Equal(t, Neighbor{3, 0}, closest[3])
	assert.Equal(t, Neighbor{2, 2}, closest[1])
	assert.Equal(t, Neighbor{3, 2}, closest[2])
	assert.Equal(t, Neighbor{3, 2}, closest[4])
	assert.Equal(t, Neighbor{4, 2}, closest[5])
}

func TestContractKeepsIsolatedEdge(t *testing.T) {
	g := New(2)
	g.AddEdge(1, 2, 1, true)
	closest := g.Contract()
	// neither endpoint contracts: the neighbor would be left alone
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, Neighbor{1, 0}, closest[1])
	assert.Equal(t, Neighbor{2, 0}, closest[2])
}

func TestContractPendant(t *testing.T) {
	// path 1-2-3-4 with an extra leaf 5 at 2
	g := New(5)
	for v := NodeID(1); v < 4; v++ {
		g.AddEdge(v, v+1, 1, true)
	}
	g.AddEdge(5, 2, 1, true)
	closest := g.Contract()
	assert.ElementsMatch(t, []NodeID{2, 3}, g.Nodes())
	assert.Equal(t, Neighbor{2, 1}, closest[1])
	assert.Equal(t, Neighbor{2, 1}, closest[5])
	assert.Equal(t, Neighbor{3, 1}, closest[4])
	assert.Equal(t, Neighbor{2, 0}, closest[2])
}

func TestConnectedComponents(t *testing.T) {
	g := New(5)
	g.AddEdge(1, 2, 1, true)
	g.AddEdge(3, 4, 1, true)
	g.AddEdge(4, 5, 1, true)
	cc := g.ConnectedComponents()
	require.Len(t, cc, 2)
	sizes := []int{len(cc[0]), len(cc[1])}
	assert.ElementsMatch(t, []int{2, 3}, sizes)
	// stamps restored
	require.True(t, g.IsConsistent())
}

func TestEdgesRoundTrip(t *testing.T) {
	g := New(4)
	g.AddEdge(1, 2, 3, true)
	g.AddEdge(2, 4, 5, true)
	edges := g.Edges()
	assert.ElementsMatch(t, []Edge{{1, 2, 3}, {2, 4, 5}}, edges)
}

func TestRandomPairStaysInSubgraph(t *testing.T) {
	g := pathGraph(6, 1)
	for i := 0; i < 20; i++ {
		a, b := g.RandomPair(3)
		assert.True(t, g.Contains(a))
		assert.True(t, g.Contains(b))
	}
}

func TestRandomizeKeepsStructure(t *testing.T) {
	g := pathGraph(6, 1)
	before := g.Edges()
	g.Randomize()
	assert.True(t, g.IsUndirected())
	assert.ElementsMatch(t, before, g.Edges())
	assert.Equal(t, 6, g.NodeCount())
}
