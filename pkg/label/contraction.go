package label

import (
	"math/rand"

	"path_oracle/pkg/graph"
)

// ContractionLabel is the per-vertex query record. A root vertex owns its
// FlatCutIndex and has DistanceOffset 0; a pendant vertex references the
// root's block, with DistanceOffset the distance to the root along the
// contraction chain and Parent the next hop toward it.
type ContractionLabel struct {
	CutIndex       FlatCutIndex
	DistanceOffset graph.Distance
	Parent         graph.NodeID
}

// Size returns the memory footprint, counting the block only for owners.
func (cl ContractionLabel) Size() int {
	total := 16
	if cl.DistanceOffset == 0 && !cl.CutIndex.Empty() {
		total += cl.CutIndex.Size()
	}
	return total
}

// ContractionIndex is the complete distance-and-path-count oracle: one
// ContractionLabel per vertex. Queries take no locks.
type ContractionIndex struct {
	labels []ContractionLabel
}

// NewContractionIndex freezes the cut indexes into flat blocks, wiring
// pendant vertices (closest[v].Node != v) to their contraction roots. The
// transient CutIndex slices are released as they are consumed.
func NewContractionIndex(ci []CutIndex, closest []graph.Neighbor) *ContractionIndex {
	x := &ContractionIndex{labels: make([]ContractionLabel, len(ci))}
	// roots own their blocks
	for node := graph.NodeID(1); int(node) < len(closest); node++ {
		if closest[node].Node == node {
			x.labels[node].CutIndex = NewFlatCutIndex(&ci[node])
		}
		ci[node] = CutIndex{}
	}
	// pendants share the root's block
	for node := graph.NodeID(1); int(node) < len(closest); node++ {
		n := closest[node]
		// isolated vertices were removed (n.Node == NoNode)
		if n.Node != node && n.Node != graph.NoNode {
			root := n.Node
			rootDist := n.Distance
			for closest[root].Node != root {
				rootDist += closest[root].Distance
				root = closest[root].Node
			}
			x.labels[node].CutIndex = x.labels[root].CutIndex
			x.labels[node].DistanceOffset = rootDist
			x.labels[node].Parent = n.Node
		}
	}
	return x
}

// NewFlatIndex freezes cut indexes without contraction information; every
// labeled vertex owns its block.
func NewFlatIndex(ci []CutIndex) *ContractionIndex {
	x := &ContractionIndex{labels: make([]ContractionLabel, len(ci))}
	for node := 1; node < len(ci); node++ {
		if !ci[node].Empty() {
			x.labels[node].CutIndex = NewFlatCutIndex(&ci[node])
			ci[node] = CutIndex{}
		}
	}
	return x
}

// NodeCount returns the number of vertices covered by the index.
func (x *ContractionIndex) NodeCount() int { return len(x.labels) - 1 }

// Label returns the query record of v.
func (x *ContractionIndex) Label(v graph.NodeID) ContractionLabel { return x.labels[v] }

// SetDistanceOffset rewrites the contraction-chain offset of a pendant.
func (x *ContractionIndex) SetDistanceOffset(v graph.NodeID, d graph.Distance) {
	x.labels[v].DistanceOffset = d
}

// IsContracted reports whether v is a pendant vertex.
func (x *ContractionIndex) IsContracted(v graph.NodeID) bool {
	return x.labels[v].Parent != graph.NoNode
}

// UncontractedCount counts root vertices.
func (x *ContractionIndex) UncontractedCount() int {
	total := 0
	for node := 1; node < len(x.labels); node++ {
		if !x.IsContracted(graph.NodeID(node)) {
			total++
		}
	}
	return total
}

// InPartitionSubgraph reports whether v is an uncontracted vertex below the
// given ancestor cut.
func (x *ContractionIndex) InPartitionSubgraph(v graph.NodeID, partitionBitvector uint64) bool {
	return !x.IsContracted(v) &&
		IsAncestor(partitionBitvector, x.labels[v].CutIndex.PartitionBitvector())
}

// GetDistance returns the shortest-path distance between v and w, or
// Infinity if no path exists.
func (x *ContractionIndex) GetDistance(v, w graph.NodeID) graph.Distance {
	cv, cw := x.labels[v], x.labels[w]
	if cv.CutIndex.Empty() || cw.CutIndex.Empty() {
		return graph.Infinity
	}
	if cv.CutIndex.Same(cw.CutIndex) {
		// same contraction class: resolve within the pendant tree
		if v == w {
			return 0
		}
		if cv.DistanceOffset == 0 {
			return cw.DistanceOffset
		}
		if cw.DistanceOffset == 0 {
			return cv.DistanceOffset
		}
		if cv.Parent == w {
			return cv.DistanceOffset - cw.DistanceOffset
		}
		if cw.Parent == v {
			return cw.DistanceOffset - cv.DistanceOffset
		}
		// walk to the lowest common ancestor; the deeper chain steps up
		vAnc, wAnc := v, w
		cvAnc, cwAnc := cv, cw
		for vAnc != wAnc {
			switch {
			case cvAnc.DistanceOffset < cwAnc.DistanceOffset:
				wAnc = cwAnc.Parent
				cwAnc = x.labels[wAnc]
			case cvAnc.DistanceOffset > cwAnc.DistanceOffset:
				vAnc = cvAnc.Parent
				cvAnc = x.labels[vAnc]
			default:
				vAnc = cvAnc.Parent
				wAnc = cwAnc.Parent
				cvAnc = x.labels[vAnc]
				cwAnc = x.labels[wAnc]
			}
		}
		return cv.DistanceOffset + cw.DistanceOffset - 2*cvAnc.DistanceOffset
	}
	d := indexDistance(cv.CutIndex, cw.CutIndex)
	if d == graph.Infinity {
		return graph.Infinity
	}
	return cv.DistanceOffset + cw.DistanceOffset + d
}

// GetSPC returns the number of distinct shortest paths between v and w,
// held in a 16-bit counter that wraps on overflow. Vertices in the same contraction
// class have exactly one shortest path.
func (x *ContractionIndex) GetSPC(v, w graph.NodeID) uint16 {
	cv, cw := x.labels[v], x.labels[w]
	if cv.CutIndex.Empty() || cw.CutIndex.Empty() {
		return 0
	}
	if cv.CutIndex.Same(cw.CutIndex) {
		return 1
	}
	return indexPaths(cv.CutIndex, cw.CutIndex)
}

// indexDistance scans the parallel label prefix up to the meet level of the
// two vertices for the minimal 2-hop distance.
func indexDistance(a, b FlatCutIndex) graph.Distance {
	cutLevel := LCALevel(a.PartitionBitvector(), b.PartitionBitvector())
	ad, bd := a.Distances(), b.Distances()
	end := min(int(a.DistIndex()[cutLevel]), int(b.DistIndex()[cutLevel]))
	minDist := graph.Infinity
	for i := 0; i < end; i++ {
		if ad[i] == graph.Infinity || bd[i] == graph.Infinity {
			continue
		}
		if dist := ad[i] + bd[i]; dist < minDist {
			minDist = dist
		}
	}
	return minDist
}

// indexPaths runs the same scan accumulating path counts: a strictly
// smaller 2-hop sum resets the counter to the product of the slot counts, a
// tie adds it.
func indexPaths(a, b FlatCutIndex) uint16 {
	cutLevel := LCALevel(a.PartitionBitvector(), b.PartitionBitvector())
	ad, bd := a.Distances(), b.Distances()
	ap, bp := a.Paths(), b.Paths()
	end := min(int(a.DistIndex()[cutLevel]), int(b.DistIndex()[cutLevel]))
	minDist := graph.Infinity
	spc := uint16(0)
	for i := 0; i < end; i++ {
		if ad[i] == graph.Infinity || bd[i] == graph.Infinity {
			continue
		}
		d := ad[i] + bd[i]
		c := ap[i] * bp[i]
		if d < minDist {
			minDist = d
			spc = c
		} else if d == minDist {
			spc += c
		}
	}
	return spc
}

// GetHoplinks returns the number of label pairs a query between v and w
// inspects at its meet level.
func (x *ContractionIndex) GetHoplinks(v, w graph.NodeID) int {
	cv, cw := x.labels[v].CutIndex, x.labels[w].CutIndex
	if cv.Same(cw) {
		return 0
	}
	cutLevel := LCALevel(cv.PartitionBitvector(), cw.PartitionBitvector())
	return min(cv.CutSize(int(cutLevel)), cw.CutSize(int(cutLevel)))
}

// AvgHoplinks averages GetHoplinks over a query batch.
func (x *ContractionIndex) AvgHoplinks(queries [][2]graph.NodeID) float64 {
	hopCount := 0
	for _, q := range queries {
		hopCount += x.GetHoplinks(q[0], q[1])
	}
	return float64(hopCount) / float64(len(queries))
}

// Size returns the total index footprint in bytes.
func (x *ContractionIndex) Size() int {
	total := 0
	for node := 1; node < len(x.labels); node++ {
		if !x.labels[node].CutIndex.Empty() {
			total += x.labels[node].Size()
		}
	}
	return total
}

// LabelCount returns the number of owned label entries.
func (x *ContractionIndex) LabelCount() int {
	total := 0
	for node := 1; node < len(x.labels); node++ {
		if !x.labels[node].CutIndex.Empty() && x.labels[node].DistanceOffset == 0 {
			total += x.labels[node].CutIndex.LabelCount()
		}
	}
	return total
}

// MaxLabelCount returns the largest per-vertex label count.
func (x *ContractionIndex) MaxLabelCount() int {
	maxCount := 0
	for node := 1; node < len(x.labels); node++ {
		if !x.labels[node].CutIndex.Empty() {
			maxCount = max(maxCount, x.labels[node].CutIndex.LabelCount())
		}
	}
	return maxCount
}

// Height returns the decomposition tree height.
func (x *ContractionIndex) Height() int {
	maxLevel := uint16(0)
	for node := 1; node < len(x.labels); node++ {
		if !x.labels[node].CutIndex.Empty() {
			maxLevel = max(maxLevel, x.labels[node].CutIndex.CutLevel())
		}
	}
	return int(maxLevel)
}

// MaxCutSize returns the largest separator size.
func (x *ContractionIndex) MaxCutSize() int {
	maxCut := 0
	for node := 1; node < len(x.labels); node++ {
		if !x.labels[node].CutIndex.Empty() {
			maxCut = max(maxCut, x.labels[node].CutIndex.BottomCutSize())
		}
	}
	return maxCut
}

// AvgCutSize returns the average label count per decomposition level.
func (x *ContractionIndex) AvgCutSize() float64 {
	cutSum, labelCount := 0.0, 0.0
	for node := 1; node < len(x.labels); node++ {
		if !x.labels[node].CutIndex.Empty() {
			cutSum += float64(x.labels[node].CutIndex.CutLevel()) + 1
			labelCount += float64(x.labels[node].CutIndex.LabelCount())
		}
	}
	return labelCount / max(1.0, cutSum)
}

// CheckQuery verifies one query against a fresh Dijkstra on g, reporting
// whether both the distance and the path count agree.
func (x *ContractionIndex) CheckQuery(v, w graph.NodeID, g *graph.Graph) bool {
	dIndex := x.GetDistance(v, w)
	pIndex := x.GetSPC(v, w)
	dDijkstra := g.GetDistance(v, w, true)
	pDijkstra := g.GetPathCount(v, w, true)
	return dIndex == dDijkstra && pIndex == pDijkstra
}

// RandomQuery returns a uniformly random vertex pair.
func (x *ContractionIndex) RandomQuery() (graph.NodeID, graph.NodeID) {
	nodeCount := len(x.labels) - 1
	a := graph.NodeID(1 + rand.Intn(nodeCount))
	b := graph.NodeID(1 + rand.Intn(nodeCount))
	return a, b
}
