package graph

// Vertex-capacity max-flow between the synthetic source s and sink t, used
// to turn a rough bipartition into a minimum balanced vertex cut. Each
// ordinary vertex is implicitly split into an incoming and an outgoing copy
// joined by a unit-capacity arc; flow through a vertex is recorded by its
// inflow/outflow fields instead of explicit copy nodes. The scratch
// distance field holds the in-copy BFS level, outcopyDistance the out-copy
// level.

// flowNode addresses one of the two copies of a split vertex during flow
// searches.
type flowNode struct {
	node    NodeID
	outcopy bool
}

func updateDistance(d *Distance, dNew Distance) bool {
	if *d > dNew {
		*d = dNew
		return true
	}
	return false
}

// runFlowBFSFromS levels the residual graph from s: distance[v] is the
// number of residual arcs from s to v's copies. A vertex carrying flow
// admits entry at its in-copy only along the inverted flow arc.
func (g *Graph) runFlowBFSFromS() {
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
		g.node(nd).outcopyDistance = Infinity
	}
	g.node(g.st.t).distance = 0
	g.node(g.st.t).outcopyDistance = 0
	var queue []flowNode
	// start with neighbors of s, as s requires special flow handling
	for _, n := range g.node(g.st.s).neighbors {
		if g.Contains(n.Node) && g.node(n.Node).inflow != g.st.s {
			g.node(n.Node).distance = 1
			g.node(n.Node).outcopyDistance = 1 // inner-vertex arcs count as length 0
			queue = append(queue, flowNode{n.Node, false})
		}
	}
	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		fnData := g.node(fn.node)
		fnDist := fnData.distance
		if fn.outcopy {
			fnDist = fnData.outcopyDistance
		}
		inflow := fnData.inflow
		if inflow != NoNode && !fn.outcopy {
			// vertex carries flow: the inverted inflow arc is the only exit
			inData := g.node(inflow)
			if updateDistance(&inData.outcopyDistance, fnDist+1) {
				// set the 0-length inner distance immediately, before a
				// longer path writes a wrong value first
				updateDistance(&inData.distance, fnDist+1)
				queue = append(queue, flowNode{inflow, true})
			}
		} else {
			for _, n := range fnData.neighbors {
				if !g.Contains(n.Node) {
					continue
				}
				nData := g.node(n.Node)
				if n.Node == inflow {
					if updateDistance(&nData.outcopyDistance, fnDist+1) {
						updateDistance(&nData.distance, fnDist+1)
						queue = append(queue, flowNode{n.Node, true})
					}
				} else {
					if updateDistance(&nData.distance, fnDist+1) {
						if nData.inflow == NoNode {
							updateDistance(&nData.outcopyDistance, fnDist+1)
						}
						queue = append(queue, flowNode{n.Node, false})
					}
				}
			}
		}
	}
}

// runFlowBFSFromT levels the inverse residual graph from t, filling the
// distances consumed by the augmenting DFS.
func (g *Graph) runFlowBFSFromT() {
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
		g.node(nd).outcopyDistance = Infinity
	}
	g.node(g.st.t).distance = 0
	g.node(g.st.t).outcopyDistance = 0
	var queue []flowNode
	for _, n := range g.node(g.st.t).neighbors {
		if g.Contains(n.Node) && g.node(n.Node).outflow != g.st.t {
			g.node(n.Node).outcopyDistance = 1
			g.node(n.Node).distance = 1
			queue = append(queue, flowNode{n.Node, true})
		}
	}
	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		fnData := g.node(fn.node)
		fnDist := fnData.distance
		if fn.outcopy {
			fnDist = fnData.outcopyDistance
		}
		outflow := fnData.outflow
		if outflow != NoNode && fn.outcopy {
			// vertex carries flow: the inverted outflow arc is the only exit
			outData := g.node(outflow)
			if updateDistance(&outData.distance, fnDist+1) {
				updateDistance(&outData.outcopyDistance, fnDist+1)
				queue = append(queue, flowNode{outflow, false})
			}
		} else {
			for _, n := range fnData.neighbors {
				if !g.Contains(n.Node) {
					continue
				}
				nData := g.node(n.Node)
				if n.Node == outflow {
					if updateDistance(&nData.distance, fnDist+1) {
						updateDistance(&nData.outcopyDistance, fnDist+1)
						queue = append(queue, flowNode{n.Node, false})
					}
				} else {
					if updateDistance(&nData.outcopyDistance, fnDist+1) {
						if nData.outflow == NoNode {
							updateDistance(&nData.distance, fnDist+1)
						}
						queue = append(queue, flowNode{n.Node, true})
					}
				}
			}
		}
	}
}

// MinVertexCuts computes a maximum set of vertex-disjoint s-t paths and
// extracts up to two minimum vertex cuts: one from the sink side of the
// final residual graph and one from the source side. The caller picks the
// cut giving the better-balanced partition.
func (g *Graph) MinVertexCuts() [][]NodeID {
	for _, nd := range g.nodes {
		g.node(nd).inflow = NoNode
		g.node(nd).outflow = NoNode
	}
	// grow max flow phase by phase
	for {
		g.runFlowBFSFromT()
		sDistance := g.node(g.st.s).outcopyDistance
		if sDistance == Infinity {
			break
		}
		// DFS from s along strictly decreasing BFS levels
		var path []NodeID
		var stack []flowNode
		// iterating s's neighbors directly simplifies stack cleanup after
		// each new s-t path
		for _, sn := range g.node(g.st.s).neighbors {
			if !g.Contains(sn.Node) || g.node(sn.Node).distance != sDistance-1 {
				continue
			}
			if g.node(sn.Node).inflow != NoNode {
				// arc s->sn already saturated
				continue
			}
			stack = append(stack, flowNode{sn.Node, false})
			for len(stack) > 0 {
				fn := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				fnData := g.node(fn.node)
				fnDist := fnData.distance
				if fn.outcopy {
					fnDist = fnData.outcopyDistance
				}
				// node may have been invalidated after being stacked
				if fnDist == Infinity {
					continue
				}
				// backtrack the path prefix to this depth
				path = path[:sDistance-fnDist-1]
				if fn.node == g.st.t {
					// commit augmenting path, inverting existing flow arcs
					g.node(path[0]).inflow = g.st.s
					for pos := 1; pos < len(path); pos++ {
						from, to := path[pos-1], path[pos]
						// may be reverting existing flow; from.inflow can
						// have changed already, so check outflow
						if g.node(to).outflow == from {
							g.node(to).outflow = NoNode
							if g.node(from).inflow == to {
								g.node(from).inflow = NoNode
							}
						} else {
							g.node(from).outflow = to
							g.node(to).inflow = from
						}
					}
					g.node(path[len(path)-1]).outflow = g.st.t
					stack = stack[:0]
					path = path[:0]
					break
				}
				// invalidate the visited copy for the rest of this phase
				if fn.outcopy {
					fnData.outcopyDistance = Infinity
				} else {
					fnData.distance = Infinity
				}
				path = append(path, fn.node)
				nextDistance := fnDist - 1
				inflow := fnData.inflow
				if inflow != NoNode && !fn.outcopy {
					// inverting the inflow is the only continuation
					if g.node(inflow).outcopyDistance == nextDistance {
						stack = append(stack, flowNode{inflow, true})
					}
				} else {
					for _, n := range fnData.neighbors {
						if !g.Contains(n.Node) {
							continue
						}
						if n.Node == inflow {
							if g.node(inflow).outcopyDistance == nextDistance {
								stack = append(stack, flowNode{inflow, true})
							}
						} else {
							if g.node(n.Node).distance == nextDistance {
								stack = append(stack, flowNode{n.Node, false})
							}
						}
					}
				}
			}
		}
	}
	// sink-side cut: the inner arc of a flow vertex is in the cut iff its
	// out-copy is reachable from t in the inverse residual graph and its
	// in-copy is not; for outer arcs reachability can only break at t
	// itself, making the tail vertex the cut vertex.
	cuts := make([][]NodeID, 1)
	for _, nd := range g.nodes {
		data := g.node(nd)
		if data.outflow == NoNode {
			continue
		}
		if data.outcopyDistance < Infinity {
			if data.distance == Infinity {
				cuts[0] = append(cuts[0], nd)
			}
		} else if data.outflow == g.st.t {
			cuts[0] = append(cuts[0], nd)
		}
	}
	// source-side cut, from reachability from s in the residual graph
	g.runFlowBFSFromS()
	cuts = append(cuts, nil)
	for _, nd := range g.nodes {
		data := g.node(nd)
		if data.inflow == NoNode {
			continue
		}
		if data.distance < Infinity {
			if data.outcopyDistance == Infinity {
				cuts[1] = append(cuts[1], nd)
			}
		} else if data.inflow == g.st.s {
			cuts[1] = append(cuts[1], nd)
		}
	}
	if nodeSetsEqual(cuts[0], cuts[1]) {
		cuts = cuts[:1]
	}
	return cuts
}

func nodeSetsEqual(a, b []NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
