// Package hierarchy builds the recursive balanced-cut decomposition of a
// graph and the per-vertex cut labeling derived from it: each recursion
// level computes a minimum balanced vertex cut, orders it, extends every
// vertex's label bookkeeping, and descends into the two sides.
package hierarchy

import (
	"log"
	"sort"
	"sync"

	"path_oracle/pkg/graph"
	"path_oracle/pkg/label"
)

// Config carries the construction knobs.
type Config struct {
	// Balance bounds the smaller side of each cut from below, as a
	// fraction of the subgraph.
	Balance float64
	// Workers enables parallel recursion and multi-source searches.
	Workers int
	// AddShortcuts inserts border shortcut edges while descending. The
	// resulting labels keep exact distances but not exact path counts, so
	// counting builds leave this off.
	AddShortcuts bool
}

// DefaultBalance is the cut balance used by the build tools.
const DefaultBalance = 0.2

type builder struct {
	cfg Config
	ci  []label.CutIndex
	// transient per-vertex distances to ancestor separators, maintained
	// only when shortcut insertion needs them
	hop [][]graph.Distance
}

// CreateCutIndex decomposes g and returns the per-vertex cut indexes with
// partition bits, cut levels and label offsets filled in. The label
// distance and path arrays stay empty; shortcut-graph propagation fills
// them. The view's membership stamps are consumed; callers reset g
// afterwards.
func CreateCutIndex(g *graph.Graph, cfg Config) []label.CutIndex {
	if cfg.Balance == 0 {
		cfg.Balance = DefaultBalance
	}
	b := &builder{cfg: cfg, ci: make([]label.CutIndex, g.TotalNodes()+1)}
	if cfg.AddShortcuts {
		b.hop = make([][]graph.Distance, g.TotalNodes()+1)
	}
	log.Printf("Decomposing %d vertices (balance %.2f)...", g.NodeCount(), cfg.Balance)
	g.SortNeighbors()
	for _, node := range g.Nodes() {
		b.ci[node].DistIndex = make([]uint16, 0, 32)
	}
	b.extend(g, 0)
	b.hop = nil
	return b.ci
}

func (b *builder) extend(g *graph.Graph, cutLevel int) {
	if g.NodeCount() < 2 {
		for _, node := range g.Nodes() {
			b.ci[node].CutLevel = 0
			b.ci[node].DistIndex = append(b.ci[node].DistIndex, 0)
		}
		return
	}
	var p graph.Partition
	if cutLevel < label.MaxCutLevel {
		g.CreatePartition(&p, b.cfg.Balance, !b.cfg.AddShortcuts)
	} else {
		// tree height exhausted: the whole subgraph becomes one cut
		p.Cut = append(p.Cut, g.Nodes()...)
	}

	b.sortCutForPruning(g, p.Cut)
	for c, node := range p.Cut {
		g.SetLandmarkLevel(node, uint16(len(p.Cut)-c))
	}

	// extend the label offsets: cut members only carry labels for the cut
	// prefix up to their own position
	for _, node := range g.Nodes() {
		prev := uint16(0)
		if cutLevel > 0 {
			prev = b.ci[node].DistIndex[cutLevel-1]
		}
		if ll := g.LandmarkLevel(node); ll == 0 {
			b.ci[node].DistIndex = append(b.ci[node].DistIndex, prev+uint16(len(p.Cut)))
		} else {
			b.ci[node].DistIndex = append(b.ci[node].DistIndex, prev+uint16(len(p.Cut))-ll+1)
		}
	}
	for _, c := range p.Cut {
		b.ci[c].CutLevel = uint16(cutLevel)
	}
	for _, node := range p.Right {
		b.ci[node].Partition |= 1 << cutLevel
	}

	if b.cfg.AddShortcuts {
		b.fillHopLabels(g, p.Cut)
	}

	for _, c := range p.Cut {
		g.SetLandmarkLevel(c, 0)
	}

	if b.cfg.Workers > 1 && g.NodeCount() > g.ThreadThreshold() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.extendOnPartition(g, p.Left, p.Cut, cutLevel)
		}()
		b.extendOnPartition(g, p.Right, p.Cut, cutLevel)
		wg.Wait()
	} else {
		b.extendOnPartition(g, p.Left, p.Cut, cutLevel)
		b.extendOnPartition(g, p.Right, p.Cut, cutLevel)
	}
}

func (b *builder) extendOnPartition(g *graph.Graph, part, cut []graph.NodeID, cutLevel int) {
	if len(part) > 1 {
		sub := g.Subgraph(part)
		if b.cfg.AddShortcuts {
			b.addShortcuts(sub, cut)
		}
		b.extend(sub, cutLevel+1)
	} else if len(part) == 1 {
		node := part[0]
		b.ci[node].CutLevel = uint16(cutLevel) + 1
		b.ci[node].DistIndex = append(b.ci[node].DistIndex, b.ci[node].DistIndex[cutLevel]+1)
	}
}

// sortCutForPruning orders the cut ascending by pruning potential: a
// landmark-flagged search from each cut vertex counts the vertices with at
// least one shortest path through another cut member. Low-scoring
// vertices come first, so the more widely useful separators land on the
// later label slots.
func (b *builder) sortCutForPruning(g *graph.Graph, cut []graph.NodeID) {
	type scored struct {
		score int
		node  graph.NodeID
	}
	potential := make([]scored, len(cut))
	for c, node := range cut {
		potential[c].node = node
		g.SetLandmarkLevel(node, 1)
	}
	if b.cfg.Workers > 1 && g.NodeCount() > g.ThreadThreshold() {
		for offset := 0; offset < len(cut); offset += graph.MultiSourceSlots {
			end := min(offset+graph.MultiSourceSlots, len(cut))
			g.RunDijkstraLLPar(cut[offset:end])
			for slot := 0; slot < end-offset; slot++ {
				for _, node := range g.Nodes() {
					if g.SlotDistance(node, slot)&1 == 0 {
						potential[offset+slot].score++
					}
				}
			}
		}
	} else {
		for c := range cut {
			g.RunDijkstraLL(cut[c])
			for _, node := range g.Nodes() {
				if g.Distance(node)&1 == 0 {
					potential[c].score++
				}
			}
		}
	}
	sort.Slice(potential, func(i, j int) bool {
		if potential[i].score != potential[j].score {
			return potential[i].score < potential[j].score
		}
		return potential[i].node < potential[j].node
	})
	for c := range cut {
		cut[c] = potential[c].node
	}
}
