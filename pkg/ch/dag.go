// Package ch builds and maintains the shortcut DAG: for every vertex that
// survives degree-1 contraction, the set of upward edges toward vertices
// with smaller label slots, each carrying the shortest distance and the
// number of shortest paths it represents. The DAG fills the label arrays
// bottom-up at build time and drives their repair under edge weight
// changes.
package ch

import (
	"slices"
	"sync"

	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"

	"path_oracle/pkg/bucket"
)

// Contracted marks vertices removed by degree-1 contraction; they have no
// DAG node.
const Contracted = uint16(65535)

// Neighbor is a DAG edge: target vertex, shortest distance, and the number
// of shortest paths of that distance the edge summarizes.
type Neighbor struct {
	Node      graph.NodeID
	Distance  graph.Distance
	PathCount uint16
}

// DAGNode is the per-vertex DAG state.
type DAGNode struct {
	// DistIndex is the vertex's own label slot: its position within its
	// leaf cut, offset by the labels of all ancestor cuts. Upward edges
	// point strictly toward smaller slots.
	DistIndex uint16
	// UpNeighbors are the upward edges, deduplicated by target.
	UpNeighbors []Neighbor
	// DownNeighbors lists the sources of incoming upward edges, sorted.
	DownNeighbors []graph.NodeID
}

// DAG is the shortcut graph over all surviving vertices.
type DAG struct {
	Nodes []DAGNode
}

// upBefore orders upward edges for deduplication: deeper targets first,
// then shorter distances, then larger path counts, so the first entry per
// target is the one to keep.
func (d *DAG) upBefore(a, b Neighbor) bool {
	ai, bi := d.Nodes[a.Node].DistIndex, d.Nodes[b.Node].DistIndex
	if ai != bi {
		return ai > bi
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.PathCount > b.PathCount
}

// dedupUp sorts and deduplicates an upward edge list by target vertex.
func (d *DAG) dedupUp(up []Neighbor) []Neighbor {
	if len(up) < 2 {
		return up
	}
	slices.SortFunc(up, func(a, b Neighbor) int {
		if d.upBefore(a, b) {
			return -1
		}
		if d.upBefore(b, a) {
			return 1
		}
		return 0
	})
	last := 0
	for next := 1; next < len(up); next++ {
		if up[next].Node != up[last].Node {
			last++
			up[last] = up[next]
		}
	}
	return up[:last+1]
}

// Build constructs the shortcut DAG over the graph and fills the label
// distance and path arrays of ci by bottom-up propagation. closest is the
// contraction table; only vertices with closest[v].Node == v take part.
// With workers > 1 the propagation pass runs on a parallel bucket list.
func Build(g *graph.Graph, ci []label.CutIndex, closest []graph.Neighbor, workers int) *DAG {
	d := &DAG{Nodes: make([]DAGNode, g.TotalNodes()+1)}
	var bottomUp []graph.NodeID
	// label slot of each vertex determines its DAG level
	for _, node := range g.Nodes() {
		if closest[node].Node == node {
			if ci[node].DistIndex[ci[node].CutLevel] == 0 {
				// a lone surviving vertex of a trivial decomposition
				// carries no labels and plays no DAG role
				d.Nodes[node].DistIndex = Contracted
				continue
			}
			bottomUp = append(bottomUp, node)
			d.Nodes[node].DistIndex = ci[node].DistIndex[ci[node].CutLevel] - 1
			count := int(d.Nodes[node].DistIndex)
			ci[node].Distances = make([]graph.Distance, count)
			for i := range ci[node].Distances {
				ci[node].Distances[i] = graph.Infinity
			}
			ci[node].Paths = make([]uint16, count)
		} else {
			d.Nodes[node].DistIndex = Contracted
		}
	}

	// seed with the upward graph edges
	for _, node := range bottomUp {
		for _, n := range g.Neighbors(node) {
			if closest[n.Node].Node == n.Node && d.Nodes[n.Node].DistIndex < d.Nodes[node].DistIndex {
				d.Nodes[node].UpNeighbors = append(d.Nodes[node].UpNeighbors, Neighbor{n.Node, n.Distance, 1})
				ci[node].Distances[d.Nodes[n.Node].DistIndex] = n.Distance
				ci[node].Paths[d.Nodes[n.Node].DistIndex] = 1
			}
		}
	}

	// add shortcuts bottom-up: every pair of upward neighbors of a deeper
	// vertex induces a candidate edge between them
	slices.SortFunc(bottomUp, func(a, b graph.NodeID) int {
		return int(d.Nodes[b].DistIndex) - int(d.Nodes[a].DistIndex)
	})
	for _, node := range bottomUp {
		up := d.dedupUp(d.Nodes[node].UpNeighbors)
		d.Nodes[node].UpNeighbors = up
		for i := 0; i+1 < len(up); i++ {
			for j := i + 1; j < len(up); j++ {
				weight := up[i].Distance + up[j].Distance
				pathCount := up[i].PathCount * up[j].PathCount
				slot := d.Nodes[up[j].Node].DistIndex
				target := &ci[up[i].Node]
				if weight < target.Distances[slot] {
					d.Nodes[up[i].Node].UpNeighbors = append(d.Nodes[up[i].Node].UpNeighbors,
						Neighbor{up[j].Node, weight, pathCount})
					target.Distances[slot] = weight
					target.Paths[slot] = pathCount
				} else if weight == target.Distances[slot] {
					target.Paths[slot] += pathCount
					d.Nodes[up[i].Node].UpNeighbors = append(d.Nodes[up[i].Node].UpNeighbors,
						Neighbor{up[j].Node, weight, target.Paths[slot]})
				}
			}
		}
		for _, upn := range up {
			d.Nodes[upn.Node].DownNeighbors = append(d.Nodes[upn.Node].DownNeighbors, node)
		}
	}
	// sorted down lists support merge-style intersection during repair
	for _, node := range bottomUp {
		slices.Sort(d.Nodes[node].DownNeighbors)
	}

	// propagate label values toward ancestors: process slots in ascending
	// order so every upward neighbor's labels are final
	if workers > 1 {
		d.propagatePar(ci, bottomUp, workers)
	} else {
		for i := len(bottomUp) - 1; i >= 0; i-- {
			d.propagateNode(ci, bottomUp[i])
		}
	}
	return d
}

// propagateNode combines each upward edge with the target's ancestor labels
// and finishes with the vertex's own zero-distance slot.
func (d *DAG) propagateNode(ci []label.CutIndex, node graph.NodeID) {
	for _, n := range d.Nodes[node].UpNeighbors {
		source := &ci[n.Node]
		target := &ci[node]
		for anc := 0; anc < int(d.Nodes[n.Node].DistIndex); anc++ {
			if source.Distances[anc] == graph.Infinity {
				continue
			}
			dist := n.Distance + source.Distances[anc]
			pathCount := n.PathCount * source.Paths[anc]
			if dist < target.Distances[anc] {
				target.Distances[anc] = dist
				target.Paths[anc] = pathCount
			} else if dist == target.Distances[anc] {
				target.Paths[anc] += pathCount
			}
		}
	}
	ci[node].Distances = append(ci[node].Distances, 0)
	ci[node].Paths = append(ci[node].Paths, 1)
}

// propagatePar runs the propagation pass on a parallel bucket list keyed by
// label slot; a barrier separates consecutive slots.
func (d *DAG) propagatePar(ci []label.CutIndex, bottomUp []graph.NodeID, workers int) {
	list := bucket.NewParList[graph.NodeID](workers)
	for _, node := range bottomUp {
		list.Push(node, int(d.Nodes[node].DistIndex))
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			var node graph.NodeID
			for list.Next(&node, worker) {
				d.propagateNode(ci, node)
			}
		}(w)
	}
	wg.Wait()
}

// UpNeighbor returns the upward edge from v to w, which must exist.
func (d *DAG) UpNeighbor(v, w graph.NodeID) *Neighbor {
	up := d.Nodes[v].UpNeighbors
	for i := range up {
		if up[i].Node == w {
			return &up[i]
		}
	}
	return nil
}

// EdgeCount returns the number of DAG edges.
func (d *DAG) EdgeCount() int {
	total := 0
	for i := range d.Nodes {
		total += len(d.Nodes[i].UpNeighbors)
	}
	return total
}

// Size returns the approximate memory footprint in bytes.
func (d *DAG) Size() int {
	total := 0
	for i := 1; i < len(d.Nodes); i++ {
		if d.Nodes[i].DistIndex == Contracted {
			continue
		}
		total += 8
		total += len(d.Nodes[i].UpNeighbors) * 10
		total += len(d.Nodes[i].DownNeighbors) * 4
	}
	return total
}
