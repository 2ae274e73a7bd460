// Package dyn repairs the distance labels after edge weight changes. The
// shortcut DAG is repaired first (ch.RepairDecrease / ch.RepairIncrease);
// the resulting edge change set is then propagated through ancestor label
// slots and down the DAG to descendants. Sequential, optimized and
// parallel executions of the label phase are provided, along with the
// offset repair for updates touching contracted pendant chains.
package dyn

import (
	"slices"

	"path_oracle/pkg/bucket"
	"path_oracle/pkg/ch"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"
)

// labelItem is a pending update of one label slot.
type labelItem struct {
	v         graph.NodeID
	i         uint16
	distance  graph.Distance
	pathCount uint16
}

// slotItem is a pending update within a fixed label slot, used by the
// parallel variants where the slot is the work-list key.
type slotItem struct {
	v         graph.NodeID
	distance  graph.Distance
	pathCount uint16
}

// seedDecrease turns the DAG change set into initial label updates: every
// improved edge (v,w) may improve v's labels for all slots up to w's.
func seedDecrease(d *ch.DAG, x *label.ContractionIndex, changes []ch.EdgeChange,
	push func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16)) {
	for _, c := range changes {
		a := x.Label(c.V).CutIndex
		slotW := d.Nodes[c.W].DistIndex
		if c.Distance > a.Distances()[slotW] {
			continue
		}
		b := x.Label(c.W).CutIndex
		bd, bp := b.Distances(), b.Paths()
		ad := a.Distances()
		for i := 0; i <= int(slotW); i++ {
			if bd[i] == graph.Infinity {
				continue
			}
			dist := c.Distance + bd[i]
			if ad[i] >= dist {
				push(c.V, uint16(i), dist, c.PathCount*bp[i])
			}
		}
	}
}

// seedIncrease turns the DAG change set into initial label invalidations:
// every slot whose value was realized through a degraded edge loses the
// corresponding path count.
func seedIncrease(d *ch.DAG, x *label.ContractionIndex, changes []ch.EdgeChange,
	push func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16)) {
	for _, c := range changes {
		a := x.Label(c.V).CutIndex
		slotW := d.Nodes[c.W].DistIndex
		if c.Distance != a.Distances()[slotW] {
			continue
		}
		b := x.Label(c.W).CutIndex
		bd, bp := b.Distances(), b.Paths()
		ad := a.Distances()
		for i := 0; i <= int(slotW); i++ {
			if bd[i] == graph.Infinity {
				continue
			}
			dist := c.Distance + bd[i]
			if dist == ad[i] {
				push(c.V, uint16(i), dist, c.PathCount*bp[i])
			}
		}
	}
}

// Decrease applies edge weight decreases: DAG repair, then sequential label
// propagation in ascending slot order, so ancestors settle before their
// descendants are touched.
func Decrease(d *ch.DAG, x *label.ContractionIndex, updates []ch.Update) {
	changes := d.RepairDecrease(updates)
	var q bucket.MinQueue[labelItem]
	seedDecrease(d, x, changes, func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
		q.Push(labelItem{v, i, dist, pathCount}, int(d.Nodes[v].DistIndex))
	})
	for !q.Empty() {
		next := q.Pop()
		cv := x.Label(next.v).CutIndex
		dv, pv := cv.Distances(), cv.Paths()
		if dv[next.i] > next.distance {
			dv[next.i] = next.distance
			pv[next.i] = next.pathCount
		} else if dv[next.i] == next.distance {
			pv[next.i] += next.pathCount
		} else {
			continue
		}
		for _, u := range d.Nodes[next.v].DownNeighbors {
			edge := d.UpNeighbor(u, next.v)
			if edge.Distance == graph.Infinity {
				continue
			}
			dist := edge.Distance + next.distance
			cu := x.Label(u).CutIndex
			if cu.Distances()[next.i] >= dist {
				q.Push(labelItem{u, next.i, dist, edge.PathCount * next.pathCount},
					int(d.Nodes[u].DistIndex))
			}
		}
	}
}

// Increase applies edge weight increases: DAG repair, then sequential
// removal of the drained path counts, recomputing slots whose counts reach
// zero from their upward neighborhood.
func Increase(g *graph.Graph, d *ch.DAG, x *label.ContractionIndex, updates []ch.Update) {
	changes := d.RepairIncrease(g, updates)
	var q bucket.MinQueue[labelItem]
	seedIncrease(d, x, changes, func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
		q.Push(labelItem{v, i, dist, pathCount}, int(d.Nodes[v].DistIndex))
	})
	for !q.Empty() {
		next := q.Pop()
		cv := x.Label(next.v).CutIndex
		dv, pv := cv.Distances(), cv.Paths()
		// propagate to descendants before this slot changes
		for _, u := range d.Nodes[next.v].DownNeighbors {
			edge := d.UpNeighbor(u, next.v)
			if edge.Distance == graph.Infinity || dv[next.i] == graph.Infinity {
				continue
			}
			dist := edge.Distance + dv[next.i]
			cu := x.Label(u).CutIndex
			if dist == cu.Distances()[next.i] {
				q.Push(labelItem{u, next.i, dist, edge.PathCount * next.pathCount},
					int(d.Nodes[u].DistIndex))
			}
		}
		if pv[next.i] > next.pathCount {
			pv[next.i] -= next.pathCount
		} else {
			recomputeSlot(d, x, next.v, next.i)
		}
	}
}

// recomputeSlot rebuilds one label slot from scratch over the vertex's
// upward edges.
func recomputeSlot(d *ch.DAG, x *label.ContractionIndex, v graph.NodeID, i uint16) {
	cv := x.Label(v).CutIndex
	dv, pv := cv.Distances(), cv.Paths()
	dv[i] = graph.Infinity
	for _, u := range d.Nodes[v].UpNeighbors {
		if d.Nodes[u.Node].DistIndex < i || u.Distance == graph.Infinity {
			continue
		}
		cu := x.Label(u.Node).CutIndex
		if cu.Distances()[i] == graph.Infinity {
			continue
		}
		dist := u.Distance + cu.Distances()[i]
		pathCount := u.PathCount * cu.Paths()[i]
		if dist < dv[i] {
			dv[i] = dist
			pv[i] = pathCount
		} else if dist == dv[i] {
			pv[i] += pathCount
		}
	}
}

// ContractedUpdate is an edge change involving a pendant vertex, reduced to
// an offset rewrite: Node's chain offset moves from OldOffset to NewOffset.
type ContractedUpdate struct {
	OldOffset, NewOffset graph.Distance
	Node                 graph.NodeID
}

// RepairContracted re-propagates pendant chain offsets. Updates are
// processed in ascending old-offset order; an update whose precondition no
// longer holds was already subsumed by an earlier rewrite and is skipped.
func RepairContracted(g *graph.Graph, x *label.ContractionIndex, updates []ContractedUpdate) {
	slices.SortFunc(updates, func(a, b ContractedUpdate) int {
		if a.OldOffset != b.OldOffset {
			return int(int64(a.OldOffset) - int64(b.OldOffset))
		}
		if a.NewOffset != b.NewOffset {
			return int(int64(a.NewOffset) - int64(b.NewOffset))
		}
		return int(a.Node) - int(b.Node)
	})
	type searchNode struct {
		distance graph.Distance
		node     graph.NodeID
	}
	var stack []searchNode
	for _, u := range updates {
		if u.OldOffset != x.Label(u.Node).DistanceOffset {
			continue
		}
		stack = append(stack, searchNode{u.NewOffset, u.Node})
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x.SetDistanceOffset(next.node, next.distance)
			for _, n := range g.Neighbors(next.node) {
				if x.Label(n.Node).Parent == next.node {
					stack = append(stack, searchNode{next.distance + n.Distance, n.Node})
				}
			}
		}
	}
}
