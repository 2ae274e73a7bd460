package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flowFixture stamps the given vertices into a flow view and attaches the
// synthetic source and sink to the named border vertices.
func flowFixture(g *Graph, members, sBorder, tBorder []NodeID) *Graph {
	center := g.flowView(members)
	center.AddNode(g.S())
	center.AddNode(g.T())
	for _, v := range sBorder {
		center.AddEdge(g.S(), v, 1, true)
	}
	for _, v := range tBorder {
		center.AddEdge(g.T(), v, 1, true)
	}
	return center
}

// separates reports whether removing cut from the member set disconnects
// every sBorder vertex from every tBorder vertex.
func separates(g *Graph, members, cut, sBorder, tBorder []NodeID) bool {
	inCut := map[NodeID]bool{}
	for _, v := range cut {
		inCut[v] = true
	}
	member := map[NodeID]bool{}
	for _, v := range members {
		member[v] = true
	}
	reached := map[NodeID]bool{}
	var stack []NodeID
	for _, v := range sBorder {
		if !inCut[v] {
			stack = append(stack, v)
			reached[v] = true
		}
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range g.Neighbors(v) {
			if member[n.Node] && !inCut[n.Node] && !reached[n.Node] {
				reached[n.Node] = true
				stack = append(stack, n.Node)
			}
		}
	}
	for _, v := range tBorder {
		if reached[v] {
			return false
		}
	}
	return true
}

func TestMinVertexCutSingleBottleneck(t *testing.T) {
	// two triangles joined through a three-vertex bridge: any single
	// bridge vertex is a minimum cut
	g := New(7)
	g.AddEdge(1, 2, 1, true)
	g.AddEdge(2, 3, 1, true)
	g.AddEdge(1, 3, 1, true)
	g.AddEdge(3, 4, 1, true)
	g.AddEdge(4, 5, 1, true)
	g.AddEdge(5, 6, 1, true)
	g.AddEdge(6, 7, 1, true)
	g.AddEdge(5, 7, 1, true)
	members := []NodeID{2, 3, 4, 5, 6}
	center := flowFixture(g, members, []NodeID{2}, []NodeID{6})
	cuts := center.MinVertexCuts()
	require.NotEmpty(t, cuts)
	for _, cut := range cuts {
		require.Len(t, cut, 1)
		assert.True(t, separates(g, members, cut, []NodeID{2}, []NodeID{6}))
	}
}

func TestMinVertexCutParallelPaths(t *testing.T) {
	// two disjoint 2-hop paths from 1 to 6: cut needs both middles
	g := New(6)
	g.AddEdge(1, 2, 1, true)
	g.AddEdge(2, 6, 1, true)
	g.AddEdge(1, 3, 1, true)
	g.AddEdge(3, 6, 1, true)
	center := flowFixture(g, []NodeID{2, 3}, []NodeID{2, 3}, []NodeID{2, 3})
	cuts := center.MinVertexCuts()
	require.NotEmpty(t, cuts)
	for _, cut := range cuts {
		assert.ElementsMatch(t, []NodeID{2, 3}, cut)
	}
}

func TestMinVertexCutLongMiddle(t *testing.T) {
	// 1 - 2 - 3 - 4 - 5: separating {2} from {4} inside the middle path
	// cuts the single vertex 3
	g := pathGraph(5, 1)
	center := flowFixture(g, []NodeID{3}, []NodeID{3}, []NodeID{3})
	cuts := center.MinVertexCuts()
	require.NotEmpty(t, cuts)
	for _, cut := range cuts {
		assert.Equal(t, []NodeID{3}, cut)
	}
}

func TestPartitionRating(t *testing.T) {
	p := Partition{Left: []NodeID{1, 2, 3}, Cut: []NodeID{4}, Right: []NodeID{5, 6}}
	assert.InDelta(t, 1.0, p.Rating(), 1e-9)
	p.Cut = append(p.Cut, 7)
	assert.InDelta(t, 0.4, p.Rating(), 1e-9)
}
