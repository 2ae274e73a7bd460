package graph

import (
	"math"
	"slices"
	"sort"
)

// Partition is a vertex tripartition: two sides and the separating cut.
type Partition struct {
	Left  []NodeID
	Cut   []NodeID
	Right []NodeID
}

// Rating scores a partition: balanced sides and small cuts rate higher.
func (p *Partition) Rating() float64 {
	l, r, c := float64(len(p.Left)), float64(len(p.Right)), float64(len(p.Cut))
	return math.Min(l, r) / (c*c + 1)
}

// whether rough partitioning uses edge weights for endpoint finding and for
// the distance difference; hop distances give better-balanced separators on
// road networks
const (
	weightedFurthest = false
	weightedDiff     = false
)

// ConnectedComponents splits the view into its connected components.
// Membership stamps are temporarily cleared during traversal and restored
// before returning.
func (g *Graph) ConnectedComponents() [][]NodeID {
	var components [][]NodeID
	for _, start := range g.nodes {
		if !g.Contains(start) {
			continue // already visited
		}
		g.node(start).subgraphID = noSubgraph
		var cc []NodeID
		stack := []NodeID{start}
		for len(stack) > 0 {
			nd := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cc = append(cc, nd)
			for _, n := range g.node(nd).neighbors {
				if g.Contains(n.Node) {
					g.node(n.Node).subgraphID = noSubgraph
					stack = append(stack, n.Node)
				}
			}
		}
		components = append(components, cc)
	}
	g.assignNodes()
	return components
}

func sortBySizeDesc(components [][]NodeID) {
	sort.SliceStable(components, func(i, j int) bool {
		return len(components[i]) > len(components[j])
	})
}

// addToSmaller appends the component to the currently smaller side.
func addToSmaller(pa, pb *[]NodeID, cc []NodeID) {
	if len(*pa) <= len(*pb) {
		*pa = append(*pa, cc...)
	} else {
		*pb = append(*pb, cc...)
	}
}

// RoughPartition computes an approximate bipartition of the view into
// p.Left / p.Cut / p.Right. It returns true when the partition is already
// final (empty cut from disconnected components, or a provably minimal
// bottleneck cut), false when the middle band still has to be refined by
// max-flow.
func (g *Graph) RoughPartition(p *Partition, balance float64, disconnected bool) bool {
	if disconnected {
		cc := g.ConnectedComponents()
		if len(cc) > 1 {
			sortBySizeDesc(cc)
			// for size-zero cuts the balance requirement is loosened
			if float64(len(cc[0])) < float64(len(g.nodes))*(1-balance/2) {
				for _, c := range cc {
					addToSmaller(&p.Left, &p.Right, c)
				}
				return true
			}
			// partition the main component, then distribute the rest
			mainCC := g.Subgraph(cc[0])
			isFine := mainCC.RoughPartition(p, balance, false)
			for _, nd := range mainCC.nodes {
				g.node(nd).subgraphID = g.id
			}
			if isFine {
				for i := 1; i < len(cc); i++ {
					addToSmaller(&p.Left, &p.Right, cc[i])
				}
			}
			return isFine
		}
	}
	// graph is connected: find two extreme points
	a, _ := g.GetFurthest(g.nodes[0], weightedFurthest)
	b, _ := g.GetFurthest(a, weightedFurthest)
	diff := g.GetDiffData(a, b, weightedDiff, weightedFurthest)
	sort.Slice(diff, func(i, j int) bool { return diff[i].Diff() < diff[j].Diff() })
	// partition bounds based on balance; round up if possible
	maxLeft := min(len(g.nodes)/2, int(math.Ceil(float64(len(g.nodes))*balance)))
	minRight := len(g.nodes) - maxLeft
	// corner case: most vertices share the same distance difference
	if diff[maxLeft-1].Diff() == diff[minRight].Diff() {
		// find the bottleneck vertices of the degenerate band
		centerDiff := diff[minRight].Diff()
		minDist := Infinity
		var bottlenecks []NodeID
		for _, dd := range diff {
			if dd.Diff() == centerDiff {
				if dd.Min() < minDist {
					minDist = dd.Min()
					bottlenecks = bottlenecks[:0]
				}
				if dd.Min() == minDist {
					bottlenecks = append(bottlenecks, dd.Node)
				}
			}
		}
		slices.Sort(bottlenecks)
		// retry with the bottlenecks removed
		g.RemoveNodes(bottlenecks)
		isFine := g.RoughPartition(p, balance, true)
		for _, bn := range bottlenecks {
			g.AddNode(bn)
			p.Cut = append(p.Cut, bn)
		}
		// the bottlenecks form a minimal cut only if they are the whole cut
		return isFine && len(p.Cut) == len(bottlenecks)
	}
	// expand boundaries so equal-diff vertices stay on one side
	for diff[maxLeft-1].Diff() == diff[maxLeft].Diff() {
		maxLeft++
	}
	for diff[minRight-1].Diff() == diff[minRight].Diff() {
		minRight--
	}
	for i, dd := range diff {
		switch {
		case i < maxLeft:
			p.Left = append(p.Left, dd.Node)
		case i < minRight:
			p.Cut = append(p.Cut, dd.Node)
		default:
			p.Right = append(p.Right, dd.Node)
		}
	}
	return false
}

// roughPartitionToCuts refines a rough partition into minimum vertex cuts:
// the middle band becomes a flow graph with s attached to the left border
// and t to the right border. Direct left-right edges force both endpoints
// into the middle first.
func (g *Graph) roughPartitionToCuts(p *Partition) [][]NodeID {
	left := g.Subgraph(p.Left)
	center := g.flowView(p.Cut)
	right := g.Subgraph(p.Right)
	s, t := g.st.s, g.st.t
	center.AddNode(s)
	center.AddNode(t)
	// edges between left and right would bypass the flow graph; move both
	// endpoints into the center first, as this can eliminate s/t neighbors
	var sNeighbors, tNeighbors []NodeID
	for _, nd := range left.nodes {
		for _, n := range g.node(nd).neighbors {
			if right.Contains(n.Node) {
				sNeighbors = append(sNeighbors, nd)
				tNeighbors = append(tNeighbors, n.Node)
			}
		}
	}
	sNeighbors = makeSet(sNeighbors)
	tNeighbors = makeSet(tNeighbors)
	left.RemoveNodes(sNeighbors)
	for _, nd := range sNeighbors {
		center.AddNode(nd)
	}
	right.RemoveNodes(tNeighbors)
	for _, nd := range tNeighbors {
		center.AddNode(nd)
	}
	// remaining border vertices become s/t neighbors
	for _, nd := range left.nodes {
		for _, n := range g.node(nd).neighbors {
			if center.Contains(n.Node) {
				sNeighbors = append(sNeighbors, n.Node)
			}
		}
	}
	for _, nd := range right.nodes {
		for _, n := range g.node(nd).neighbors {
			if center.Contains(n.Node) {
				tNeighbors = append(tNeighbors, n.Node)
			}
		}
	}
	sNeighbors = makeSet(sNeighbors)
	tNeighbors = makeSet(tNeighbors)
	for _, nd := range sNeighbors {
		center.AddEdge(s, nd, 1, true)
	}
	for _, nd := range tNeighbors {
		center.AddEdge(t, nd, 1, true)
	}
	cuts := center.MinVertexCuts()
	// revert the s/t attachment
	for _, nd := range tNeighbors {
		nbs := g.node(nd).neighbors
		g.node(nd).neighbors = nbs[:len(nbs)-1]
	}
	for _, nd := range sNeighbors {
		nbs := g.node(nd).neighbors
		g.node(nd).neighbors = nbs[:len(nbs)-1]
	}
	center.sData.neighbors = nil
	center.tData.neighbors = nil
	g.assignNodes()
	return cuts
}

// CompletePartition rebuilds p.Left and p.Right as the connected components
// remaining after removing p.Cut, greedily balanced.
func (g *Graph) CompletePartition(p *Partition) {
	p.Cut = makeSet(p.Cut)
	g.RemoveNodes(p.Cut)
	p.Left = p.Left[:0]
	p.Right = p.Right[:0]
	components := g.ConnectedComponents()
	sortBySizeDesc(components)
	for _, cc := range components {
		addToSmaller(&p.Left, &p.Right, cc)
	}
	for _, nd := range p.Cut {
		g.AddNode(nd)
	}
}

// CreatePartition computes a balanced minimum vertex cut partition of the
// view. handleDisconnected must be set when the view may have several
// components (builds without border shortcuts).
func (g *Graph) CreatePartition(p *Partition, balance float64, handleDisconnected bool) {
	if g.RoughPartition(p, balance, handleDisconnected) {
		return
	}
	cuts := g.roughPartitionToCuts(p)
	p.Cut = cuts[0]
	g.CompletePartition(p)
	for i := 1; i < len(cuts); i++ {
		alt := Partition{Cut: cuts[i]}
		g.CompletePartition(&alt)
		if p.Rating() < alt.Rating() {
			*p = alt
		}
	}
}
