package dyn

import (
	"path_oracle/pkg/bucket"
	"path_oracle/pkg/ch"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"
)

// Optimized variants: when many updates converge on one label slot, the
// plain propagation re-processes its descendants once per touched value.
// Here the slot's high path bit marks "update pending"; the original value
// is captured into the queue on first touch, later updates fold into the
// slot in place, and propagation runs once per slot with the net effect.

const pendingBit = uint16(1) << 15

// optQueue carries the original slot values, keyed by the owner's slot.
type optQueue struct {
	q bucket.MinQueue[labelItem]
	d *ch.DAG
	x *label.ContractionIndex
}

// captureDecrease folds a decrease into the slot, capturing the original
// value on first touch.
func (o *optQueue) captureDecrease(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
	cv := o.x.Label(v).CutIndex
	dv, pv := cv.Distances(), cv.Paths()
	if pv[i]&pendingBit == 0 {
		o.q.Push(labelItem{v, i, dv[i], pv[i]}, int(o.d.Nodes[v].DistIndex))
		pv[i] |= pendingBit
	}
	if dv[i] > dist {
		dv[i] = dist
		pv[i] = pathCount | pendingBit
	} else {
		pv[i] += pathCount
	}
}

// captureIncrease folds a count removal into the slot, capturing the
// original value on first touch.
func (o *optQueue) captureIncrease(v graph.NodeID, i uint16, pathCount uint16) {
	cv := o.x.Label(v).CutIndex
	dv, pv := cv.Distances(), cv.Paths()
	if pv[i]&pendingBit == 0 {
		o.q.Push(labelItem{v, i, dv[i], pv[i]}, int(o.d.Nodes[v].DistIndex))
		pv[i] |= pendingBit
	}
	pv[i] -= pathCount
}

// DecreaseOpt applies edge weight decreases with in-place pending markers.
func DecreaseOpt(d *ch.DAG, x *label.ContractionIndex, updates []ch.Update) {
	changes := d.RepairDecrease(updates)
	o := &optQueue{d: d, x: x}
	seedDecrease(d, x, changes, func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
		o.captureDecrease(v, i, dist, pathCount)
	})
	for !o.q.Empty() {
		next := o.q.Pop() // holds the original slot value
		cv := x.Label(next.v).CutIndex
		dv, pv := cv.Distances(), cv.Paths()
		pv[next.i] &^= pendingBit
		// the net new count at the slot's settled distance
		var convexCount uint16
		if dv[next.i] == next.distance {
			convexCount = pv[next.i] - next.pathCount
		} else if dv[next.i] < next.distance {
			convexCount = pv[next.i]
		} else {
			continue
		}
		for _, u := range d.Nodes[next.v].DownNeighbors {
			edge := d.UpNeighbor(u, next.v)
			if edge.Distance == graph.Infinity {
				continue
			}
			dist := edge.Distance + dv[next.i]
			cu := x.Label(u).CutIndex
			if cu.Distances()[next.i] >= dist {
				o.captureDecrease(u, next.i, dist, edge.PathCount*convexCount)
			}
		}
	}
}

// IncreaseOpt applies edge weight increases with in-place pending markers.
func IncreaseOpt(g *graph.Graph, d *ch.DAG, x *label.ContractionIndex, updates []ch.Update) {
	changes := d.RepairIncrease(g, updates)
	o := &optQueue{d: d, x: x}
	seedIncrease(d, x, changes, func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
		o.captureIncrease(v, i, pathCount)
	})
	for !o.q.Empty() {
		next := o.q.Pop() // holds the original slot value
		cv := x.Label(next.v).CutIndex
		dv, pv := cv.Distances(), cv.Paths()
		pv[next.i] &^= pendingBit
		// the net count drained from the slot
		convexCount := next.pathCount - pv[next.i]
		for _, u := range d.Nodes[next.v].DownNeighbors {
			edge := d.UpNeighbor(u, next.v)
			if edge.Distance == graph.Infinity || dv[next.i] == graph.Infinity {
				continue
			}
			dist := edge.Distance + dv[next.i]
			cu := x.Label(u).CutIndex
			if dist == cu.Distances()[next.i] {
				o.captureIncrease(u, next.i, edge.PathCount*convexCount)
			}
		}
		if pv[next.i] == 0 {
			recomputeSlot(d, x, next.v, next.i)
		}
	}
}
