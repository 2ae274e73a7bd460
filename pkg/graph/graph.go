// Package graph implements the shared vertex store underlying index
// construction: a single node table carved into transient subgraph views by
// ID stamping, weighted adjacency lists, search primitives (Dijkstra with
// path counting, BFS, flow BFS), vertex-capacity max-flow with two-sided
// min-cut extraction, balanced partitioning, and degree-1 contraction.
package graph

import (
	"math"
	"math/rand"
	"slices"
	"sync/atomic"
)

// NodeID identifies a vertex. IDs are 1-based; 0 is the null value. Two
// extra slots past the last real vertex hold the synthetic source and sink
// used by max-flow.
type NodeID uint32

// Distance is an edge weight or path length in arbitrary positive units.
type Distance uint32

// Infinity is the "no path" sentinel distance.
const Infinity = Distance(math.MaxUint32)

// NoNode is the null vertex ID.
const NoNode = NodeID(0)

// SubgraphID tags node table entries with the subgraph they currently
// belong to. 0 means "not in any active subgraph".
type SubgraphID uint32

const noSubgraph = SubgraphID(0)

// MultiSourceSlots is the number of concurrent Dijkstra runs supported by
// the per-node distance slot array.
const MultiSourceSlots = 8

// Neighbor is one adjacency list entry.
type Neighbor struct {
	Node     NodeID
	Distance Distance
}

// Edge is an undirected edge with endpoints a < b by convention.
type Edge struct {
	A, B NodeID
	D    Distance
}

// node carries per-vertex state shared by all subgraph views. The search
// and flow fields are scratch space owned by whichever view currently runs
// an algorithm over the vertex; disjoint views may run concurrently.
type node struct {
	subgraphID SubgraphID
	neighbors  []Neighbor

	// search scratch
	distance  Distance
	pathCount uint16
	// flow scratch: distance doubles as the in-copy BFS distance
	outcopyDistance Distance
	inflow, outflow NodeID
	// separator ordering scratch
	landmarkLevel uint16
	// per-slot distances for concurrent multi-source Dijkstra
	distances [MultiSourceSlots]Distance
}

// store is the process-wide node table backing all subgraph views of one
// input graph.
type store struct {
	nodes  []node // indexed by NodeID; [0] unused, s and t at the tail
	s, t   NodeID
	nextID atomic.Uint32

	// threadThreshold is the subgraph size above which recursive
	// partitioning and multi-source searches fan out to goroutines.
	threadThreshold int
}

func (st *store) newSubgraphID() SubgraphID {
	return SubgraphID(st.nextID.Add(1))
}

// Graph is a subgraph view: a member list plus the SubgraphID stamped onto
// the members' node table entries. Membership tests are O(1). The top-level
// view returned by New covers every vertex.
type Graph struct {
	st    *store
	id    SubgraphID
	nodes []NodeID

	// sData/tData hold the synthetic source/sink state for views that run
	// max-flow. They are per-view so that disjoint partitioning tasks can
	// flow concurrently without sharing the two tail slots.
	sData, tData *node
}

// New creates a graph with nodeCount vertices (IDs 1..nodeCount) and no
// edges. All vertices start as members of the returned top-level view.
func New(nodeCount int) *Graph {
	st := &store{}
	g := &Graph{st: st}
	g.id = st.newSubgraphID()
	g.resize(nodeCount)
	return g
}

// NewWithEdges creates a graph and adds the given undirected edges.
func NewWithEdges(nodeCount int, edges []Edge) *Graph {
	g := New(nodeCount)
	for _, e := range edges {
		g.AddEdge(e.A, e.B, e.D, true)
	}
	return g
}

func (g *Graph) resize(nodeCount int) {
	st := g.st
	st.nodes = make([]node, nodeCount+3)
	for i := range st.nodes {
		st.nodes[i].subgraphID = g.id
	}
	st.s = NodeID(nodeCount + 1)
	st.t = NodeID(nodeCount + 2)
	st.nodes[0].subgraphID = noSubgraph
	st.nodes[st.s].subgraphID = noSubgraph
	st.nodes[st.t].subgraphID = noSubgraph
	g.nodes = make([]NodeID, 0, nodeCount)
	for v := NodeID(1); v <= NodeID(nodeCount); v++ {
		g.nodes = append(g.nodes, v)
	}
	st.threadThreshold = max(nodeCount/MultiSourceSlots, 1000)
}

// node resolves a NodeID to its state, routing the synthetic source/sink to
// the view-local slots when this view carries them.
func (g *Graph) node(v NodeID) *node {
	if g.sData != nil {
		if v == g.st.s {
			return g.sData
		}
		if v == g.st.t {
			return g.tData
		}
	}
	return &g.st.nodes[v]
}

// Contains reports whether v is a member of this subgraph view.
func (g *Graph) Contains(v NodeID) bool {
	return g.node(v).subgraphID == g.id
}

// Subgraph creates a new view over the given vertices, stamping them with a
// fresh SubgraphID. The vertices leave the parent view until the parent
// restamps them (AssignNodes).
func (g *Graph) Subgraph(nodes []NodeID) *Graph {
	sub := &Graph{st: g.st, id: g.st.newSubgraphID()}
	sub.nodes = append(sub.nodes, nodes...)
	sub.assignNodes()
	return sub
}

// flowView creates a view like Subgraph but with private source/sink slots
// for running max-flow.
func (g *Graph) flowView(nodes []NodeID) *Graph {
	sub := g.Subgraph(nodes)
	sub.sData = &node{}
	sub.tData = &node{}
	return sub
}

// S and T return the synthetic source and sink IDs.
func (g *Graph) S() NodeID { return g.st.s }
func (g *Graph) T() NodeID { return g.st.t }

// AddEdge inserts edge (v,w) with the given positive distance. A duplicate
// edge keeps the minimum distance. With bothDirs the reverse direction is
// added as well.
func (g *Graph) AddEdge(v, w NodeID, distance Distance, bothDirs bool) {
	nd := g.node(v)
	exists := false
	for i := range nd.neighbors {
		if nd.neighbors[i].Node == w {
			exists = true
			nd.neighbors[i].Distance = min(nd.neighbors[i].Distance, distance)
			break
		}
	}
	if !exists {
		nd.neighbors = append(nd.neighbors, Neighbor{w, distance})
	}
	if bothDirs {
		g.AddEdge(w, v, distance, false)
	}
}

// RemoveEdge deletes edge (v,w) in both directions.
func (g *Graph) RemoveEdge(v, w NodeID) {
	g.node(v).neighbors = deleteNeighbor(g.node(v).neighbors, w)
	g.node(w).neighbors = deleteNeighbor(g.node(w).neighbors, v)
}

func deleteNeighbor(neighbors []Neighbor, w NodeID) []Neighbor {
	out := neighbors[:0]
	for _, n := range neighbors {
		if n.Node != w {
			out = append(out, n)
		}
	}
	return out
}

// UpdateEdge sets the weight of the directed adjacency entry v→w if present.
func (g *Graph) UpdateEdge(v, w NodeID, d Distance) {
	nd := g.node(v)
	for i := range nd.neighbors {
		if nd.neighbors[i].Node == w {
			nd.neighbors[i].Distance = d
			break
		}
	}
}

// AddNode adds v to this subgraph view.
func (g *Graph) AddNode(v NodeID) {
	g.nodes = append(g.nodes, v)
	g.node(v).subgraphID = g.id
}

// RemoveNodes removes the given sorted set of vertices from the view.
func (g *Graph) RemoveNodes(nodeSet []NodeID) {
	g.nodes = removeSet(g.nodes, nodeSet)
	for _, v := range nodeSet {
		g.node(v).subgraphID = noSubgraph
	}
}

// RemoveIsolated drops all vertices without any incident edge.
func (g *Graph) RemoveIsolated() {
	kept := g.nodes[:0]
	for _, v := range g.nodes {
		if g.Degree(v) == 0 {
			g.node(v).subgraphID = noSubgraph
		} else {
			kept = append(kept, v)
		}
	}
	g.nodes = kept
}

// Reset rebuilds the view from the node table, keeping every vertex that
// has at least one adjacency entry. Used to restore the top-level view
// after recursive partitioning has restamped everything.
func (g *Graph) Reset() {
	g.nodes = g.nodes[:0]
	for v := NodeID(1); v < NodeID(len(g.st.nodes))-2; v++ {
		if len(g.st.nodes[v].neighbors) > 0 {
			g.nodes = append(g.nodes, v)
			g.st.nodes[v].subgraphID = g.id
		}
	}
	g.st.nodes[g.st.s].subgraphID = noSubgraph
	g.st.nodes[g.st.t].subgraphID = noSubgraph
}

// AssignNodes restamps all member vertices with this view's ID, reclaiming
// them from child views.
func (g *Graph) AssignNodes() { g.assignNodes() }

func (g *Graph) assignNodes() {
	for _, v := range g.nodes {
		g.node(v).subgraphID = g.id
	}
}

// NodeCount returns the number of vertices in this view.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// TotalNodes returns the number of vertex slots in the backing table,
// excluding the synthetic source/sink.
func (g *Graph) TotalNodes() int { return len(g.st.nodes) - 3 }

// Nodes returns the view's member list. The slice is owned by the view.
func (g *Graph) Nodes() []NodeID { return g.nodes }

// Neighbors returns the raw adjacency list of v, unfiltered by membership.
func (g *Graph) Neighbors(v NodeID) []Neighbor { return g.node(v).neighbors }

// Degree counts neighbors of v within the view.
func (g *Graph) Degree(v NodeID) int {
	deg := 0
	for _, n := range g.node(v).neighbors {
		if g.Contains(n.Node) {
			deg++
		}
	}
	return deg
}

// SingleNeighbor returns the unique in-view neighbor of v, or a null
// Neighbor if v has zero or more than one.
func (g *Graph) SingleNeighbor(v NodeID) Neighbor {
	neighbor := Neighbor{NoNode, 0}
	for _, n := range g.node(v).neighbors {
		if g.Contains(n.Node) {
			if neighbor.Node == NoNode {
				neighbor = n
			} else {
				return Neighbor{NoNode, 0}
			}
		}
	}
	return neighbor
}

// EdgeCount returns the number of undirected in-view edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, v := range g.nodes {
		for _, n := range g.node(v).neighbors {
			if g.Contains(n.Node) {
				count++
			}
		}
	}
	return count / 2
}

// Edges collects all in-view undirected edges, one record per edge.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, a := range g.nodes {
		for _, n := range g.node(a).neighbors {
			if n.Node > a && g.Contains(n.Node) {
				edges = append(edges, Edge{a, n.Node, n.Distance})
			}
		}
	}
	return edges
}

// Distance returns the scratch distance of v written by the last search.
func (g *Graph) Distance(v NodeID) Distance { return g.node(v).distance }

// PathCount returns the scratch shortest-path count of v written by the
// last counting Dijkstra.
func (g *Graph) PathCount(v NodeID) uint16 { return g.node(v).pathCount }

// SlotDistance returns the per-slot distance written by RunDijkstraPar.
func (g *Graph) SlotDistance(v NodeID, slot int) Distance {
	return g.node(v).distances[slot]
}

// LandmarkLevel returns the separator-ordering level of v.
func (g *Graph) LandmarkLevel(v NodeID) uint16 { return g.node(v).landmarkLevel }

// SetLandmarkLevel marks v with a separator-ordering level used by the
// pruned search variants.
func (g *Graph) SetLandmarkLevel(v NodeID, level uint16) {
	g.node(v).landmarkLevel = level
}

// ThreadThreshold is the subgraph size above which work fans out to
// goroutines.
func (g *Graph) ThreadThreshold() int { return g.st.threadThreshold }

// RandomNode returns a uniformly random member vertex.
func (g *Graph) RandomNode() NodeID {
	return g.nodes[rand.Intn(len(g.nodes))]
}

// RandomPair returns a random query pair. With steps < 1 both endpoints are
// uniform; otherwise the second endpoint is reached by a random walk of the
// given length from the first.
func (g *Graph) RandomPair(steps int) (NodeID, NodeID) {
	if steps < 1 {
		return g.RandomNode(), g.RandomNode()
	}
	start := g.RandomNode()
	stop := start
	for i := 0; i < steps; i++ {
		var n NodeID
		for {
			nbs := g.node(stop).neighbors
			n = nbs[rand.Intn(len(nbs))].Node
			if g.Contains(n) {
				break
			}
		}
		stop = n
	}
	return start, stop
}

// RandomUpdate picks a random existing edge and returns its weight and
// endpoints, for generating update workloads.
func (g *Graph) RandomUpdate() (Distance, NodeID, NodeID) {
	a := g.RandomNode()
	n := g.node(a).neighbors[rand.Intn(len(g.node(a).neighbors))]
	return n.Distance, a, n.Node
}

// Randomize shuffles the member list and all adjacency lists.
func (g *Graph) Randomize() {
	rand.Shuffle(len(g.nodes), func(i, j int) {
		g.nodes[i], g.nodes[j] = g.nodes[j], g.nodes[i]
	})
	for _, v := range g.nodes {
		nbs := g.node(v).neighbors
		rand.Shuffle(len(nbs), func(i, j int) {
			nbs[i], nbs[j] = nbs[j], nbs[i]
		})
	}
}

// SortNeighbors orders every member's adjacency list by node ID, making the
// downstream algorithms deterministic.
func (g *Graph) SortNeighbors() {
	for _, v := range g.nodes {
		nbs := g.node(v).neighbors
		slices.SortFunc(nbs, func(a, b Neighbor) int { return int(a.Node) - int(b.Node) })
	}
}

// IsUndirected verifies that every adjacency entry has a matching reverse
// entry with the same weight.
func (g *Graph) IsUndirected() bool {
	for _, v := range g.nodes {
		for _, n := range g.node(v).neighbors {
			found := false
			for _, nn := range g.node(n.Node).neighbors {
				if nn.Node == v && nn.Distance == n.Distance {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// IsConsistent verifies the stamping invariant: the member list and the set
// of table entries carrying this view's ID coincide.
func (g *Graph) IsConsistent() bool {
	for _, v := range g.nodes {
		if g.node(v).subgraphID != g.id {
			return false
		}
	}
	count := 0
	for v := range g.st.nodes {
		if g.Contains(NodeID(v)) {
			count++
		}
	}
	return count == len(g.nodes)
}

// removeSet removes the sorted set from v, preserving order.
func removeSet(v, set []NodeID) []NodeID {
	if len(v) == 0 || len(set) == 0 {
		return v
	}
	out := v[:0]
	for _, x := range v {
		if !containsSorted(set, x) {
			out = append(out, x)
		}
	}
	return out
}

func containsSorted(set []NodeID, x NodeID) bool {
	lo, hi := 0, len(set)
	for lo < hi {
		mid := (lo + hi) / 2
		if set[mid] < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(set) && set[lo] == x
}

// makeSet sorts v and removes duplicates in place.
func makeSet(v []NodeID) []NodeID {
	if len(v) < 2 {
		return v
	}
	slices.Sort(v)
	return slices.Compact(v)
}
