package graph

import "slices"

// Contract iteratively removes degree-1 vertices from the view and returns
// the closest-neighbor table: closest[v] is v itself for surviving
// vertices, the retained neighbor (with the edge distance) for contracted
// vertices, and the null Neighbor for vertices outside the view.
func (g *Graph) Contract() []Neighbor {
	closest := make([]Neighbor, len(g.st.nodes)-2)
	for _, nd := range g.nodes {
		closest[nd] = Neighbor{nd, 0}
	}
	findDegreeOne := func(candidates []NodeID) (degreeOne, neighbors []NodeID) {
		for _, nd := range candidates {
			if !g.Contains(nd) {
				continue
			}
			neighbor := g.SingleNeighbor(nd)
			if neighbor.Node == NoNode {
				continue
			}
			// keep at least one vertex per component: never contract a
			// vertex whose neighbor is itself down to a single neighbor
			if g.SingleNeighbor(neighbor.Node).Node == NoNode {
				closest[nd] = neighbor
				degreeOne = append(degreeOne, nd)
				neighbors = append(neighbors, neighbor.Node)
			}
		}
		return degreeOne, neighbors
	}
	degreeOne, neighbors := findDegreeOne(g.nodes)
	for len(degreeOne) > 0 {
		slices.Sort(degreeOne)
		g.RemoveNodes(degreeOne)
		degreeOne, neighbors = findDegreeOne(neighbors)
	}
	return closest
}
