package ch_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path_oracle/pkg/ch"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/hierarchy"
)

func buildDAG(t *testing.T, n int, edges []graph.Edge, workers int) (*graph.Graph, *ch.DAG) {
	t.Helper()
	g := graph.NewWithEdges(n, edges)
	g.RemoveIsolated()
	closest := g.Contract()
	ci := hierarchy.CreateCutIndex(g, hierarchy.Config{Balance: 0.2, Workers: workers})
	g.Reset()
	return g, ch.Build(g, ci, closest, workers)
}

func cycleEdges() []graph.Edge {
	return []graph.Edge{{A: 1, B: 2, D: 1}, {A: 2, B: 3, D: 1}, {A: 3, B: 4, D: 1}, {A: 4, B: 1, D: 1}}
}

// checkInvariants verifies the DAG edge direction and down list ordering.
func checkInvariants(t *testing.T, d *ch.DAG) {
	t.Helper()
	for v := 1; v < len(d.Nodes); v++ {
		nd := &d.Nodes[v]
		if nd.DistIndex == ch.Contracted {
			assert.Empty(t, nd.UpNeighbors)
			continue
		}
		seen := map[graph.NodeID]bool{}
		for _, n := range nd.UpNeighbors {
			assert.Less(t, d.Nodes[n.Node].DistIndex, nd.DistIndex,
				"up edge %d->%d not upward", v, n.Node)
			assert.False(t, seen[n.Node], "duplicate up edge %d->%d", v, n.Node)
			seen[n.Node] = true
		}
		for i := 1; i < len(nd.DownNeighbors); i++ {
			assert.Less(t, nd.DownNeighbors[i-1], nd.DownNeighbors[i],
				"down neighbors of %d not sorted", v)
		}
		for _, u := range nd.DownNeighbors {
			require.NotNil(t, d.UpNeighbor(u, graph.NodeID(v)),
				"down neighbor %d of %d lacks the mirror up edge", u, v)
		}
	}
}

func TestBuildCycle(t *testing.T) {
	_, d := buildDAG(t, 4, cycleEdges(), 1)
	checkInvariants(t, d)
	// the two separator vertices take the lowest slots, the sides the
	// deeper ones, and a shortcut between the separators summarizes both
	// two-hop routes
	slots := map[graph.NodeID]uint16{}
	for v := graph.NodeID(1); v <= 4; v++ {
		slots[v] = d.Nodes[v].DistIndex
	}
	assert.Equal(t, uint16(0), slots[2])
	assert.Equal(t, uint16(1), slots[4])
	assert.Equal(t, uint16(2), slots[1])
	assert.Equal(t, uint16(2), slots[3])
	require.Len(t, d.Nodes[4].UpNeighbors, 1)
	assert.Equal(t, ch.Neighbor{Node: 2, Distance: 2, PathCount: 2}, d.Nodes[4].UpNeighbors[0])
	assert.Len(t, d.Nodes[1].UpNeighbors, 2)
	assert.Len(t, d.Nodes[3].UpNeighbors, 2)
	assert.Empty(t, d.Nodes[2].UpNeighbors)
	assert.Equal(t, []graph.NodeID{1, 3, 4}, d.Nodes[2].DownNeighbors)
	assert.Equal(t, []graph.NodeID{1, 3}, d.Nodes[4].DownNeighbors)
}

func TestBuildMarksContracted(t *testing.T) {
	// path 1-2-3-4 with leaf 5 at 2: pendants 1, 4, 5 contract away
	edges := []graph.Edge{{A: 1, B: 2, D: 1}, {A: 2, B: 3, D: 1}, {A: 3, B: 4, D: 1}, {A: 5, B: 2, D: 1}}
	_, d := buildDAG(t, 5, edges, 1)
	checkInvariants(t, d)
	assert.Equal(t, ch.Contracted, d.Nodes[1].DistIndex)
	assert.Equal(t, ch.Contracted, d.Nodes[4].DistIndex)
	assert.Equal(t, ch.Contracted, d.Nodes[5].DistIndex)
	assert.NotEqual(t, ch.Contracted, d.Nodes[2].DistIndex)
	assert.NotEqual(t, ch.Contracted, d.Nodes[3].DistIndex)
}

func TestBuildGridInvariants(t *testing.T) {
	var edges []graph.Edge
	m := 5
	id := func(r, c int) graph.NodeID { return graph.NodeID(r*m + c + 1) }
	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			if c+1 < m {
				edges = append(edges, graph.Edge{A: id(r, c), B: id(r, c+1), D: graph.Distance(1 + (r+c)%3)})
			}
			if r+1 < m {
				edges = append(edges, graph.Edge{A: id(r, c), B: id(r+1, c), D: graph.Distance(1 + (r*c)%4)})
			}
		}
	}
	_, seq := buildDAG(t, m*m, edges, 1)
	checkInvariants(t, seq)
	_, par := buildDAG(t, m*m, edges, 4)
	checkInvariants(t, par)
	// the propagation schedule must not change the DAG
	assert.Equal(t, seq.Nodes, par.Nodes)
}

func TestDAGRoundTrip(t *testing.T) {
	edges := []graph.Edge{{A: 1, B: 2, D: 1}, {A: 2, B: 3, D: 1}, {A: 3, B: 4, D: 1}, {A: 4, B: 1, D: 1}, {A: 5, B: 1, D: 2}}
	_, d := buildDAG(t, 5, edges, 1)

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))
	first := append([]byte(nil), buf.Bytes()...)

	reloaded, err := ch.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, d.Nodes, reloaded.Nodes)

	var buf2 bytes.Buffer
	require.NoError(t, reloaded.Write(&buf2))
	assert.Equal(t, first, buf2.Bytes(), "round trip must be byte-identical")
}

func TestUpNeighborLookup(t *testing.T) {
	_, d := buildDAG(t, 4, cycleEdges(), 1)
	n := d.UpNeighbor(4, 2)
	require.NotNil(t, n)
	assert.Equal(t, graph.Distance(2), n.Distance)
	assert.Nil(t, d.UpNeighbor(2, 4))
}
