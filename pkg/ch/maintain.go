package ch

import (
	"slices"

	"path_oracle/pkg/graph"
)

// Update is one edge weight change on the underlying graph.
type Update struct {
	Old, New graph.Distance
	V, W     graph.NodeID
}

// EdgeChange records a repaired DAG edge (V deeper than W) with its new
// distance and path count, feeding the label repair phase.
type EdgeChange struct {
	V, W      graph.NodeID
	Distance  graph.Distance
	PathCount uint16
}

// mergeChanges sorts the change set by edge and combines duplicates:
// smaller distance wins, equal distances add their path counts.
func mergeChanges(c []EdgeChange) []EdgeChange {
	if len(c) < 2 {
		return c
	}
	slices.SortFunc(c, func(a, b EdgeChange) int {
		if a.V != b.V {
			return int(a.V) - int(b.V)
		}
		if a.W != b.W {
			return int(a.W) - int(b.W)
		}
		if a.Distance != b.Distance {
			return int(int64(a.Distance) - int64(b.Distance))
		}
		return int(a.PathCount) - int(b.PathCount)
	})
	last := 0
	for next := 1; next < len(c); next++ {
		if c[next].V == c[last].V && c[next].W == c[last].W {
			if c[next].Distance < c[last].Distance {
				c[last].Distance = c[next].Distance
				c[last].PathCount = c[next].PathCount
			} else if c[next].Distance == c[last].Distance {
				c[last].PathCount += c[next].PathCount
			}
		} else {
			last++
			c[last] = c[next]
		}
	}
	return c[:last+1]
}

// orient returns the updated edge with the deeper endpoint first.
func (d *DAG) orient(a, b graph.NodeID) (graph.NodeID, graph.NodeID) {
	if d.Nodes[a].DistIndex < d.Nodes[b].DistIndex {
		return b, a
	}
	return a, b
}

// RepairDecrease propagates edge weight decreases through the DAG: an
// improved edge relaxes all shortcuts it takes part in, deeper edges first.
// The merged set of changed edges is returned.
func (d *DAG) RepairDecrease(updates []Update) []EdgeChange {
	var q repairHeap
	for _, u := range updates {
		a, b := d.orient(u.V, u.W)
		if d.UpNeighbor(a, b).Distance >= u.New {
			q.Push(repairItem{d.Nodes[a].DistIndex, a, b, u.New, 1})
		}
	}
	var changes []EdgeChange
	for q.Len() > 0 {
		next := q.Pop()
		x := d.UpNeighbor(next.v, next.w)
		if next.distance < x.Distance {
			x.Distance = next.distance
			x.PathCount = next.pathCount
		} else if next.distance == x.Distance {
			x.PathCount += next.pathCount
		} else {
			continue
		}
		for _, n := range d.Nodes[next.v].UpNeighbors {
			if n.Node == next.w {
				continue
			}
			dist := next.distance + n.Distance
			pathCount := next.pathCount * n.PathCount
			a, b := d.orient(next.w, n.Node)
			if d.UpNeighbor(a, b).Distance >= dist {
				q.Push(repairItem{d.Nodes[a].DistIndex, a, b, dist, pathCount})
			}
		}
		changes = append(changes, EdgeChange{next.v, next.w, next.distance, next.pathCount})
	}
	return mergeChanges(changes)
}

// RepairIncrease propagates edge weight increases: every shortcut whose
// distance was realized through the old weight loses the corresponding path
// count; edges whose count drains to zero are recomputed from the
// underlying graph edge and the common down-neighbors of their endpoints.
func (d *DAG) RepairIncrease(g *graph.Graph, updates []Update) []EdgeChange {
	var q repairHeap
	for _, u := range updates {
		a, b := d.orient(u.V, u.W)
		if d.UpNeighbor(a, b).Distance == u.Old {
			q.Push(repairItem{d.Nodes[a].DistIndex, a, b, u.Old, 1})
		}
	}
	var changes []EdgeChange
	for q.Len() > 0 {
		next := q.Pop()
		for _, n := range d.Nodes[next.v].UpNeighbors {
			if n.Node == next.w {
				continue
			}
			dist := next.distance + n.Distance
			pathCount := next.pathCount * n.PathCount
			a, b := d.orient(next.w, n.Node)
			if d.UpNeighbor(a, b).Distance == dist {
				q.Push(repairItem{d.Nodes[a].DistIndex, a, b, dist, pathCount})
			}
		}
		x := d.UpNeighbor(next.v, next.w)
		if x.PathCount > next.pathCount {
			x.PathCount -= next.pathCount
		} else {
			// all counted paths died: rebuild from the graph edge and the
			// shortcuts through common lower vertices
			x.Distance = graph.Infinity
			x.PathCount = 1
			for _, n := range g.Neighbors(next.v) {
				if n.Node == next.w {
					x.Distance = n.Distance
					break
				}
			}
			downV := d.Nodes[next.v].DownNeighbors
			downW := d.Nodes[next.w].DownNeighbors
			i, j := 0, 0
			for i < len(downV) && j < len(downW) {
				a, b := downV[i], downW[j]
				switch {
				case a < b:
					i++
				case b < a:
					j++
				default:
					av := d.UpNeighbor(a, next.v)
					aw := d.UpNeighbor(a, next.w)
					if av.Distance == graph.Infinity || aw.Distance == graph.Infinity {
						i++
						j++
						continue
					}
					dist := av.Distance + aw.Distance
					pathCount := av.PathCount * aw.PathCount
					if dist < x.Distance {
						x.Distance = dist
						x.PathCount = pathCount
					} else if dist == x.Distance {
						x.PathCount += pathCount
					}
					i++
					j++
				}
			}
		}
		changes = append(changes, EdgeChange{next.v, next.w, next.distance, next.pathCount})
	}
	return mergeChanges(changes)
}
