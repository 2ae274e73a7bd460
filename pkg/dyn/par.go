package dyn

import (
	"sync"

	"path_oracle/pkg/bucket"
	"path_oracle/pkg/ch"
	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"
)

// Parallel variants: pending updates are grouped by label slot, and workers
// drain one slot at a time. Different slots of one vertex are independent
// entries of its label arrays, so workers never contend on a value; within
// a slot the propagation runs single-threaded in ascending DAG order.

// DecreasePar applies edge weight decreases with the label phase fanned out
// over the given number of workers.
func DecreasePar(d *ch.DAG, x *label.ContractionIndex, updates []ch.Update, workers int) {
	changes := d.RepairDecrease(updates)
	var grouping bucket.SyncQueue[slotItem]
	seedDecrease(d, x, changes, func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
		grouping.Push(slotItem{v, dist, pathCount}, int(i))
	})
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				items, slot, ok := grouping.NextBucket()
				if !ok {
					return
				}
				decreaseSlot(d, x, items, uint16(slot))
			}
		}()
	}
	wg.Wait()
}

// decreaseSlot runs the sequential decrease propagation within one slot.
func decreaseSlot(d *ch.DAG, x *label.ContractionIndex, items []slotItem, slot uint16) {
	var q bucket.MinQueue[slotItem]
	for _, it := range items {
		q.Push(it, int(d.Nodes[it.v].DistIndex))
	}
	for !q.Empty() {
		next := q.Pop()
		cv := x.Label(next.v).CutIndex
		dv, pv := cv.Distances(), cv.Paths()
		if dv[slot] > next.distance {
			dv[slot] = next.distance
			pv[slot] = next.pathCount
		} else if dv[slot] == next.distance {
			pv[slot] += next.pathCount
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
			if cu.Distances()[slot] >= dist {
				q.Push(slotItem{u, dist, edge.PathCount * next.pathCount},
					int(d.Nodes[u].DistIndex))
			}
		}
	}
}

// IncreasePar applies edge weight increases with the label phase fanned out
// over the given number of workers.
func IncreasePar(g *graph.Graph, d *ch.DAG, x *label.ContractionIndex, updates []ch.Update, workers int) {
	changes := d.RepairIncrease(g, updates)
	var grouping bucket.SyncQueue[slotItem]
	seedIncrease(d, x, changes, func(v graph.NodeID, i uint16, dist graph.Distance, pathCount uint16) {
		grouping.Push(slotItem{v, dist, pathCount}, int(i))
	})
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				items, slot, ok := grouping.NextBucket()
				if !ok {
					return
				}
				increaseSlot(d, x, items, uint16(slot))
			}
		}()
	}
	wg.Wait()
}

// increaseSlot runs the sequential increase propagation within one slot.
func increaseSlot(d *ch.DAG, x *label.ContractionIndex, items []slotItem, slot uint16) {
	var q bucket.MinQueue[slotItem]
	for _, it := range items {
		q.Push(it, int(d.Nodes[it.v].DistIndex))
	}
	for !q.Empty() {
		next := q.Pop()
		cv := x.Label(next.v).CutIndex
		dv, pv := cv.Distances(), cv.Paths()
		for _, u := range d.Nodes[next.v].DownNeighbors {
			edge := d.UpNeighbor(u, next.v)
			if edge.Distance == graph.Infinity || dv[slot] == graph.Infinity {
				continue
			}
			dist := edge.Distance + dv[slot]
			cu := x.Label(u).CutIndex
			if dist == cu.Distances()[slot] {
				q.Push(slotItem{u, dist, edge.PathCount * next.pathCount},
					int(d.Nodes[u].DistIndex))
			}
		}
		if pv[slot] > next.pathCount {
			pv[slot] -= next.pathCount
		} else {
			recomputeSlot(d, x, next.v, slot)
		}
	}
}
