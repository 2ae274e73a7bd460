package graph

import "sync"

// searchItem is a priority queue entry for the search heaps.
type searchItem struct {
	dist Distance
	node NodeID
}

// minHeap is a concrete-typed binary min-heap keyed on distance. Avoids the
// interface boxing overhead of container/heap on the hot search paths.
type minHeap struct {
	items []searchItem
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(node NodeID, dist Distance) {
	h.items = append(h.items, searchItem{dist, node})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() searchItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

// siftUp uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *minHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

// RunDijkstra computes weighted distances and shortest-path counts from v
// into the per-node scratch fields, restricted to the subgraph.
func (g *Graph) RunDijkstra(v NodeID) {
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
		g.node(nd).pathCount = 0
	}
	g.node(v).distance = 0
	g.node(v).pathCount = 1
	var q minHeap
	q.Push(v, 0)
	for q.Len() > 0 {
		next := q.Pop()
		for _, n := range g.node(next.node).neighbors {
			if !g.Contains(n.Node) {
				continue
			}
			newDist := next.dist + n.Distance
			nd := g.node(n.Node)
			if newDist < nd.distance {
				nd.distance = newDist
				nd.pathCount = g.node(next.node).pathCount
				q.Push(n.Node, newDist)
			} else if newDist == nd.distance {
				nd.pathCount += g.node(next.node).pathCount
			}
		}
	}
}

// RunDijkstraLLSub runs Dijkstra from v but never expands into vertices
// whose landmark level is at least v's: distances are confined to the
// sub-hierarchy below v.
func (g *Graph) RunDijkstraLLSub(v NodeID) {
	pruningLevel := g.node(v).landmarkLevel
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
	}
	g.node(v).distance = 0
	var q minHeap
	q.Push(v, 0)
	for q.Len() > 0 {
		next := q.Pop()
		for _, n := range g.node(next.node).neighbors {
			nd := g.node(n.Node)
			if !g.Contains(n.Node) || nd.landmarkLevel >= pruningLevel {
				continue
			}
			newDist := next.dist + n.Distance
			if newDist < nd.distance {
				nd.distance = newDist
				q.Push(n.Node, newDist)
			}
		}
	}
}

// RunDijkstraLL runs the landmark-flagged Dijkstra from v: distances are
// shifted left one bit and the low bit records whether every shortest path
// avoids all vertices of landmark level >= v's. A vertex whose final
// distance has the low bit clear has at least one shortest path through
// such a landmark.
func (g *Graph) RunDijkstraLL(v NodeID) {
	pruningLevel := g.node(v).landmarkLevel
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
	}
	g.node(v).distance = 1
	var q minHeap
	for _, n := range g.node(v).neighbors {
		if !g.Contains(n.Node) {
			continue
		}
		nDist := (n.Distance << 1) | 1
		g.node(n.Node).distance = nDist
		q.Push(n.Node, nDist)
	}
	for q.Len() > 0 {
		next := q.Pop()
		nextData := g.node(next.node)
		currentDist := next.dist
		if nextData.landmarkLevel >= pruningLevel {
			currentDist &^= 1
		}
		for _, n := range nextData.neighbors {
			if !g.Contains(n.Node) {
				continue
			}
			newDist := currentDist + (n.Distance << 1)
			if newDist < g.node(n.Node).distance {
				g.node(n.Node).distance = newDist
				q.Push(n.Node, newDist)
			}
		}
	}
}

// RunDijkstraPar runs one Dijkstra per vertex concurrently, each writing
// into its own per-node distance slot. At most MultiSourceSlots vertices
// may be passed.
func (g *Graph) RunDijkstraPar(vertices []NodeID) {
	var wg sync.WaitGroup
	for slot, v := range vertices {
		wg.Add(1)
		go func(v NodeID, slot int) {
			defer wg.Done()
			for _, nd := range g.nodes {
				g.node(nd).distances[slot] = Infinity
			}
			g.node(v).distances[slot] = 0
			var q minHeap
			q.Push(v, 0)
			for q.Len() > 0 {
				next := q.Pop()
				for _, n := range g.node(next.node).neighbors {
					if !g.Contains(n.Node) {
						continue
					}
					newDist := next.dist + n.Distance
					if newDist < g.node(n.Node).distances[slot] {
						g.node(n.Node).distances[slot] = newDist
						q.Push(n.Node, newDist)
					}
				}
			}
		}(v, slot)
	}
	wg.Wait()
}

// RunDijkstraLLPar is the slot-parallel variant of RunDijkstraLL.
func (g *Graph) RunDijkstraLLPar(vertices []NodeID) {
	var wg sync.WaitGroup
	for slot, v := range vertices {
		wg.Add(1)
		go func(v NodeID, slot int) {
			defer wg.Done()
			pruningLevel := g.node(v).landmarkLevel
			for _, nd := range g.nodes {
				g.node(nd).distances[slot] = Infinity
			}
			g.node(v).distances[slot] = 1
			var q minHeap
			for _, n := range g.node(v).neighbors {
				if !g.Contains(n.Node) {
					continue
				}
				nDist := (n.Distance << 1) | 1
				g.node(n.Node).distances[slot] = nDist
				q.Push(n.Node, nDist)
			}
			for q.Len() > 0 {
				next := q.Pop()
				nextData := g.node(next.node)
				currentDist := next.dist
				if nextData.landmarkLevel >= pruningLevel {
					currentDist &^= 1
				}
				for _, n := range nextData.neighbors {
					if !g.Contains(n.Node) {
						continue
					}
					newDist := currentDist + (n.Distance << 1)
					if newDist < g.node(n.Node).distances[slot] {
						g.node(n.Node).distances[slot] = newDist
						q.Push(n.Node, newDist)
					}
				}
			}
		}(v, slot)
	}
	wg.Wait()
}

// RunBFS computes unweighted hop distances from v into the scratch fields.
func (g *Graph) RunBFS(v NodeID) {
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
	}
	g.node(v).distance = 0
	queue := []NodeID{v}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		newDist := g.node(next).distance + 1
		for _, n := range g.node(next).neighbors {
			if g.Contains(n.Node) && g.node(n.Node).distance == Infinity {
				g.node(n.Node).distance = newDist
				queue = append(queue, n.Node)
			}
		}
	}
}

// GetDistance returns the (weighted or hop) distance between two vertices
// by running a fresh search. Reference oracle for tests and verification.
func (g *Graph) GetDistance(v, w NodeID, weighted bool) Distance {
	if weighted {
		g.RunDijkstra(v)
	} else {
		g.RunBFS(v)
	}
	return g.node(w).distance
}

// GetPathCount returns the number of shortest paths between two vertices by
// running a fresh counting Dijkstra. With weighted false it runs a BFS,
// which does not count paths: the result is then the count left in the
// scratch field by the last counting Dijkstra.
func (g *Graph) GetPathCount(v, w NodeID, weighted bool) uint16 {
	if weighted {
		g.RunDijkstra(v)
	} else {
		g.RunBFS(v)
	}
	return g.node(w).pathCount
}

// GetFurthest returns the member vertex furthest from v and its distance.
func (g *Graph) GetFurthest(v NodeID, weighted bool) (NodeID, Distance) {
	furthest := v
	if weighted {
		g.RunDijkstra(v)
	} else {
		g.RunBFS(v)
	}
	for _, nd := range g.nodes {
		if g.node(nd).distance > g.node(furthest).distance {
			furthest = nd
		}
	}
	return furthest, g.node(furthest).distance
}

// FurthestPair iterates farthest-vertex searches until the distance stops
// growing, returning two far-apart endpoints.
func (g *Graph) FurthestPair(weighted bool) Edge {
	maxDist := Distance(0)
	start := g.nodes[0]
	furthest, dist := g.GetFurthest(start, weighted)
	for dist > maxDist {
		maxDist = dist
		start = furthest
		furthest, dist = g.GetFurthest(start, weighted)
	}
	return Edge{start, furthest, maxDist}
}

// Diameter returns the approximate diameter found by FurthestPair.
func (g *Graph) Diameter(weighted bool) Distance {
	if len(g.nodes) < 2 {
		return 0
	}
	return g.FurthestPair(weighted).D
}

// DiffData records the distances of one vertex to the two rough-partition
// endpoints.
type DiffData struct {
	Node  NodeID
	DistA Distance
	DistB Distance
}

// Diff returns the signed difference d(a,·) − d(b,·).
func (d DiffData) Diff() int64 { return int64(d.DistA) - int64(d.DistB) }

// Min returns the smaller of the two endpoint distances.
func (d DiffData) Min() Distance { return min(d.DistA, d.DistB) }

// GetDiffData computes DiffData for every member vertex. With preComputed
// the scratch distances are assumed to already hold distances from a.
func (g *Graph) GetDiffData(a, b NodeID, weighted, preComputed bool) []DiffData {
	diff := make([]DiffData, 0, len(g.nodes))
	if !preComputed {
		if weighted {
			g.RunDijkstra(a)
		} else {
			g.RunBFS(a)
		}
	}
	for _, nd := range g.nodes {
		diff = append(diff, DiffData{nd, g.node(nd).distance, 0})
	}
	if weighted {
		g.RunDijkstra(b)
	} else {
		g.RunBFS(b)
	}
	for i := range diff {
		diff[i].DistB = g.node(diff[i].Node).distance
	}
	return diff
}

// RedundantEdges finds edges that are not needed for shortest paths: a
// localized Dijkstra from each vertex checks whether some other path
// matches the edge weight.
func (g *Graph) RedundantEdges() []Edge {
	var edges []Edge
	for _, nd := range g.nodes {
		g.node(nd).distance = Infinity
	}
	var visited []NodeID
	var q minHeap
	for _, v := range g.nodes {
		g.node(v).distance = 0
		visited = append(visited, v)
		maxDist := Distance(0)
		// starting from neighbors ensures only paths of length 2+ count
		for _, n := range g.node(v).neighbors {
			if g.Contains(n.Node) {
				q.Push(n.Node, n.Distance)
				if v < n.Node {
					maxDist = max(maxDist, n.Distance)
				}
			}
		}
		for q.Len() > 0 {
			next := q.Pop()
			for _, n := range g.node(next.node).neighbors {
				if !g.Contains(n.Node) {
					continue
				}
				newDist := next.dist + n.Distance
				if newDist <= maxDist && newDist < g.node(n.Node).distance {
					g.node(n.Node).distance = newDist
					q.Push(n.Node, newDist)
					visited = append(visited, n.Node)
				}
			}
		}
		for _, n := range g.node(v).neighbors {
			if v < n.Node && g.Contains(n.Node) && g.node(n.Node).distance <= n.Distance {
				edges = append(edges, Edge{v, n.Node, n.Distance})
			}
		}
		for _, w := range visited {
			g.node(w).distance = Infinity
		}
		visited = visited[:0]
	}
	return edges
}
