package hierarchy

import (
	"slices"

	"path_oracle/pkg/graph"
)

// Border shortcut insertion. When a child subgraph is carved out, distances
// between its border vertices may run through the parent separator that was
// just removed. A shortcut edge restores such a distance inside the child,
// unless a third border vertex already witnesses it.

// hmi maps an unordered index pair into the flat half-matrix vector.
func hmi(a, b int) int {
	if a < b {
		return (b*(b-1))>>1 + a
	}
	return (a*(a-1))>>1 + b
}

// fillHopLabels appends, for every vertex of g, its distances to the newly
// formed cut in slot order. Cut members only store the prefix up to their
// own position, mirroring the label offsets.
func (b *builder) fillHopLabels(g *graph.Graph, cut []graph.NodeID) {
	appendRun := func(from int, distanceOf func(v graph.NodeID) graph.Distance) {
		for _, node := range g.Nodes() {
			if ll := g.LandmarkLevel(node); ll != 0 {
				if pos := len(cut) - int(ll); pos < from {
					continue
				}
			}
			b.hop[node] = append(b.hop[node], distanceOf(node))
		}
	}
	if b.cfg.Workers > 1 && g.NodeCount() > g.ThreadThreshold() {
		for offset := 0; offset < len(cut); offset += graph.MultiSourceSlots {
			end := min(offset+graph.MultiSourceSlots, len(cut))
			g.RunDijkstraPar(cut[offset:end])
			for slot := 0; slot < end-offset; slot++ {
				appendRun(offset+slot, func(v graph.NodeID) graph.Distance {
					return g.SlotDistance(v, slot)
				})
			}
		}
	} else {
		for c := range cut {
			g.RunDijkstra(cut[c])
			appendRun(c, g.Distance)
		}
	}
}

// hopDistance returns the minimal 2-hop distance between two vertices
// through the separator at the given level, using the transient hop labels.
func (b *builder) hopDistance(a, bn graph.NodeID, cutLevel int) graph.Distance {
	aIdx, bIdx := b.ci[a].DistIndex, b.ci[bn].DistIndex
	aOff, bOff := uint16(0), uint16(0)
	if cutLevel > 0 {
		aOff, bOff = aIdx[cutLevel-1], bIdx[cutLevel-1]
	}
	count := min(int(aIdx[cutLevel]-aOff), int(bIdx[cutLevel]-bOff))
	minDist := graph.Infinity
	for i := 0; i < count; i++ {
		da, db := b.hop[a][int(aOff)+i], b.hop[bn][int(bOff)+i]
		if da == graph.Infinity || db == graph.Infinity {
			continue
		}
		if dist := da + db; dist < minDist {
			minDist = dist
		}
	}
	return minDist
}

// addShortcuts inserts non-redundant shortcut edges among the border of g,
// the vertices adjacent to the parent separator.
func (b *builder) addShortcuts(g *graph.Graph, cut []graph.NodeID) {
	var border []graph.NodeID
	for _, cutNode := range cut {
		for _, n := range g.Neighbors(cutNode) {
			if g.Contains(n.Node) {
				border = append(border, n.Node)
			}
		}
	}
	slices.Sort(border)
	border = slices.Compact(border)
	if len(border) < 2 {
		return
	}
	cutLevel := int(b.ci[cut[0]].CutLevel)
	// pairwise distances inside the child and through the parent separator
	dPartition := make([]graph.Distance, 0, hmi(0, len(border)))
	dGraph := make([]graph.Distance, 0, hmi(0, len(border)))
	appendPair := func(i, j int, dij graph.Distance) {
		dPartition = append(dPartition, dij)
		dCut := b.hopDistance(border[i], border[j], cutLevel)
		dGraph = append(dGraph, min(dij, dCut))
	}
	if b.cfg.Workers > 1 && g.NodeCount() > g.ThreadThreshold() {
		for offset := 0; offset < len(border); offset += graph.MultiSourceSlots {
			end := min(offset+graph.MultiSourceSlots, len(border))
			g.RunDijkstraPar(border[offset:end])
			for slot := 0; slot < end-offset; slot++ {
				for j := 0; j < offset+slot; j++ {
					appendPair(offset+slot, j, g.SlotDistance(border[j], slot))
				}
			}
		}
	} else {
		for i := 1; i < len(border); i++ {
			g.RunDijkstra(border[i])
			for j := 0; j < i; j++ {
				appendPair(i, j, g.Distance(border[j]))
			}
		}
	}
	// a shortcut is added only where the parent route is strictly shorter
	// and no third border vertex witnesses the distance
	idx := 0
	for i := 1; i < len(border); i++ {
		for j := 0; j < i; j++ {
			dgIJ := dGraph[idx]
			if dPartition[idx] > dgIJ {
				redundant := false
				for k := 0; k < len(border); k++ {
					if k == i || k == j {
						continue
					}
					dik, dkj := dGraph[hmi(i, k)], dGraph[hmi(k, j)]
					if dik != graph.Infinity && dkj != graph.Infinity && dik+dkj == dgIJ {
						redundant = true
						break
					}
				}
				if !redundant {
					g.AddEdge(border[i], border[j], dgIJ, true)
				}
			}
			idx++
		}
	}
}
