package dyn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path_oracle/pkg/ch"
	"path_oracle/pkg/dyn"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/hierarchy"
	"path_oracle/pkg/label"
)

func buildOracle(t *testing.T, n int, edges []graph.Edge) (*graph.Graph, *ch.DAG, *label.ContractionIndex) {
	t.Helper()
	g := graph.NewWithEdges(n, edges)
	g.RemoveIsolated()
	closest := g.Contract()
	ci := hierarchy.CreateCutIndex(g, hierarchy.Config{Balance: 0.2})
	g.Reset()
	dag := ch.Build(g, ci, closest, 1)
	index := label.NewContractionIndex(ci, closest)
	return g, dag, index
}

type mode int

const (
	seq mode = iota
	opt
	par
)

// applyUpdates mutates the graph and repairs the oracle, routing changes on
// contracted chains to the offset repair and everything else through the
// DAG, the way the update tool does.
func applyUpdates(g *graph.Graph, dag *ch.DAG, index *label.ContractionIndex,
	changes []ch.Update, decrease bool, m mode) {
	var updates []ch.Update
	var contracted []dyn.ContractedUpdate
	for _, u := range changes {
		g.UpdateEdge(u.V, u.W, u.New)
		g.UpdateEdge(u.W, u.V, u.New)
		if index.IsContracted(u.V) || index.IsContracted(u.W) {
			x, y := index.Label(u.V), index.Label(u.W)
			if x.DistanceOffset > y.DistanceOffset {
				contracted = append(contracted, dyn.ContractedUpdate{
					OldOffset: x.DistanceOffset, NewOffset: y.DistanceOffset + u.New, Node: u.V})
			} else if x.DistanceOffset < y.DistanceOffset {
				contracted = append(contracted, dyn.ContractedUpdate{
					OldOffset: y.DistanceOffset, NewOffset: x.DistanceOffset + u.New, Node: u.W})
			}
			continue
		}
		updates = append(updates, u)
	}
	switch {
	case decrease && m == seq:
		dyn.Decrease(dag, index, updates)
	case decrease && m == opt:
		dyn.DecreaseOpt(dag, index, updates)
	case decrease && m == par:
		dyn.DecreasePar(dag, index, updates, 3)
	case !decrease && m == seq:
		dyn.Increase(g, dag, index, updates)
	case !decrease && m == opt:
		dyn.IncreaseOpt(g, dag, index, updates)
	default:
		dyn.IncreasePar(g, dag, index, updates, 3)
	}
	dyn.RepairContracted(g, index, contracted)
}

func checkAllPairs(t *testing.T, g *graph.Graph, index *label.ContractionIndex) {
	t.Helper()
	for _, v := range g.Nodes() {
		for _, w := range g.Nodes() {
			wantDist := g.GetDistance(v, w, true)
			wantSPC := g.GetPathCount(v, w, true)
			require.Equal(t, wantDist, index.GetDistance(v, w), "distance %d-%d", v, w)
			if v != w {
				require.Equal(t, wantSPC, index.GetSPC(v, w), "spc %d-%d", v, w)
			}
		}
	}
}

func pathEdges(n int, w graph.Distance) []graph.Edge {
	var edges []graph.Edge
	for v := 1; v < n; v++ {
		edges = append(edges, graph.Edge{A: graph.NodeID(v), B: graph.NodeID(v + 1), D: w})
	}
	return edges
}

func gridEdges(m int, weight func(i int) graph.Distance) []graph.Edge {
	var edges []graph.Edge
	id := func(r, c int) graph.NodeID { return graph.NodeID(r*m + c + 1) }
	i := 0
	for r := 0; r < m; r++ {
		for c := 0; c < m; c++ {
			if c+1 < m {
				edges = append(edges, graph.Edge{A: id(r, c), B: id(r, c+1), D: weight(i)})
				i++
			}
			if r+1 < m {
				edges = append(edges, graph.Edge{A: id(r, c), B: id(r+1, c), D: weight(i)})
				i++
			}
		}
	}
	return edges
}

func TestDecreaseOnContractedChain(t *testing.T) {
	// the path contracts entirely; the decrease propagates through the
	// pendant offsets
	g, dag, index := buildOracle(t, 5, pathEdges(5, 2))
	assert.Equal(t, graph.Distance(8), index.GetDistance(1, 5))
	assert.Equal(t, uint16(1), index.GetSPC(1, 5))

	applyUpdates(g, dag, index, []ch.Update{{Old: 2, New: 1, V: 3, W: 4}}, true, seq)
	assert.Equal(t, graph.Distance(7), index.GetDistance(1, 5))
	assert.Equal(t, uint16(1), index.GetSPC(1, 5))
	checkAllPairs(t, g, index)
}

func TestIncreaseBreaksTie(t *testing.T) {
	// cycle 1-2-3-4: two shortest paths between opposite vertices; the
	// increase leaves only the route avoiding the degraded edge
	g, dag, index := buildOracle(t, 4, []graph.Edge{
		{A: 1, B: 2, D: 1}, {A: 2, B: 3, D: 1}, {A: 3, B: 4, D: 1}, {A: 4, B: 1, D: 1}})
	assert.Equal(t, graph.Distance(2), index.GetDistance(1, 3))
	assert.Equal(t, uint16(2), index.GetSPC(1, 3))

	applyUpdates(g, dag, index, []ch.Update{{Old: 1, New: 10, V: 2, W: 3}}, false, seq)
	assert.Equal(t, graph.Distance(2), index.GetDistance(1, 3))
	assert.Equal(t, uint16(1), index.GetSPC(1, 3))
	checkAllPairs(t, g, index)
}

func TestDecreaseCreatesTie(t *testing.T) {
	// uneven diamond: decreasing the long arm to parity doubles the count
	g, dag, index := buildOracle(t, 4, []graph.Edge{
		{A: 1, B: 2, D: 1}, {A: 2, B: 4, D: 1}, {A: 1, B: 3, D: 2}, {A: 3, B: 4, D: 1}})
	assert.Equal(t, uint16(1), index.GetSPC(1, 4))

	applyUpdates(g, dag, index, []ch.Update{{Old: 2, New: 1, V: 1, W: 3}}, true, seq)
	assert.Equal(t, graph.Distance(2), index.GetDistance(1, 4))
	assert.Equal(t, uint16(2), index.GetSPC(1, 4))
	checkAllPairs(t, g, index)
}

func randomizedChanges(g *graph.Graph, rng *rand.Rand, count int, decrease bool) []ch.Update {
	seen := map[[2]graph.NodeID]bool{}
	var changes []ch.Update
	for len(changes) < count {
		_, a, b := g.RandomUpdate()
		if a > b {
			a, b = b, a
		}
		if seen[[2]graph.NodeID{a, b}] {
			continue
		}
		var old graph.Distance
		for _, n := range g.Neighbors(a) {
			if n.Node == b {
				old = n.Distance
			}
		}
		var next graph.Distance
		if decrease {
			if old < 2 {
				continue
			}
			next = old / 2
		} else {
			next = old + graph.Distance(1+rng.Intn(4))
		}
		seen[[2]graph.NodeID{a, b}] = true
		changes = append(changes, ch.Update{Old: old, New: next, V: a, W: b})
	}
	return changes
}

func testRandomized(t *testing.T, m mode) {
	rng := rand.New(rand.NewSource(97))
	weights := func(int) graph.Distance { return graph.Distance(2 + rng.Intn(5)*2) }
	g, dag, index := buildOracle(t, 16, gridEdges(4, weights))
	checkAllPairs(t, g, index)

	decreases := randomizedChanges(g, rng, 4, true)
	applyUpdates(g, dag, index, decreases, true, m)
	checkAllPairs(t, g, index)

	increases := randomizedChanges(g, rng, 4, false)
	applyUpdates(g, dag, index, increases, false, m)
	checkAllPairs(t, g, index)
}

func TestRandomizedSequential(t *testing.T) { testRandomized(t, seq) }
func TestRandomizedOptimized(t *testing.T)  { testRandomized(t, opt) }
func TestRandomizedParallel(t *testing.T)   { testRandomized(t, par) }

func TestInverseUpdateRestores(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	weights := func(int) graph.Distance { return graph.Distance(2 + rng.Intn(3)*2) }
	g, dag, index := buildOracle(t, 16, gridEdges(4, weights))

	type answer struct {
		dist graph.Distance
		spc  uint16
	}
	original := map[[2]graph.NodeID]answer{}
	for _, v := range g.Nodes() {
		for _, w := range g.Nodes() {
			original[[2]graph.NodeID{v, w}] = answer{index.GetDistance(v, w), index.GetSPC(v, w)}
		}
	}

	decreases := randomizedChanges(g, rng, 3, true)
	applyUpdates(g, dag, index, decreases, true, seq)

	var inverses []ch.Update
	for _, u := range decreases {
		inverses = append(inverses, ch.Update{Old: u.New, New: u.Old, V: u.V, W: u.W})
	}
	applyUpdates(g, dag, index, inverses, false, seq)

	for _, v := range g.Nodes() {
		for _, w := range g.Nodes() {
			want := original[[2]graph.NodeID{v, w}]
			require.Equal(t, want.dist, index.GetDistance(v, w), "distance %d-%d", v, w)
			require.Equal(t, want.spc, index.GetSPC(v, w), "spc %d-%d", v, w)
		}
	}
}

func TestVariantsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	weights := func(int) graph.Distance { return graph.Distance(2 + rng.Intn(4)*2) }
	edges := gridEdges(4, weights)

	gSeq, dagSeq, indexSeq := buildOracle(t, 16, edges)
	gOpt, dagOpt, indexOpt := buildOracle(t, 16, edges)
	gPar, dagPar, indexPar := buildOracle(t, 16, edges)

	changes := randomizedChanges(gSeq, rng, 4, true)
	applyUpdates(gSeq, dagSeq, indexSeq, changes, true, seq)
	applyUpdates(gOpt, dagOpt, indexOpt, changes, true, opt)
	applyUpdates(gPar, dagPar, indexPar, changes, true, par)

	for _, v := range gSeq.Nodes() {
		for _, w := range gSeq.Nodes() {
			require.Equal(t, indexSeq.GetDistance(v, w), indexOpt.GetDistance(v, w))
			require.Equal(t, indexSeq.GetDistance(v, w), indexPar.GetDistance(v, w))
			require.Equal(t, indexSeq.GetSPC(v, w), indexOpt.GetSPC(v, w))
			require.Equal(t, indexSeq.GetSPC(v, w), indexPar.GetSPC(v, w))
		}
	}
}
