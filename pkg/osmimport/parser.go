// Package osmimport reads an OSM PBF extract and turns its drivable road
// network into the undirected weighted graph consumed by index
// construction: compact 1-based vertex IDs and integer edge weights in
// meters.
package osmimport

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"path_oracle/pkg/geo"
	"path_oracle/pkg/graph"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	// skip area highways (pedestrian plazas)
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}
	// time-dependent reversible roads have no fixed undirected weight
	if tags.Find("oneway") == "reversible" {
		return false
	}
	return true
}

// Result is the parsed road network.
type Result struct {
	NodeCount int
	Edges     []graph.Edge
}

// Parse reads an OSM PBF extract and returns the undirected drivable road
// network. Way directionality is collapsed: the index answers undirected
// queries, so every drivable segment contributes one undirected edge. The
// reader is consumed twice and must support seeking.
func Parse(ctx context.Context, rs io.ReadSeeker) (*Result, error) {
	// pass 1: scan ways, collect referenced node IDs and segments
	referencedNodes := make(map[osm.NodeID]struct{})
	type segment struct {
		from, to osm.NodeID
	}
	var segments []segment

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		for i := 0; i < len(w.Nodes)-1; i++ {
			from, to := w.Nodes[i].ID, w.Nodes[i+1].ID
			if from == to {
				continue
			}
			segments = append(segments, segment{from, to})
			referencedNodes[from] = struct{}{}
			referencedNodes[to] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()
	log.Printf("Pass 1 complete: %d segments, %d referenced nodes", len(segments), len(referencedNodes))

	// pass 2: scan nodes, collect coordinates for referenced nodes only
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}
	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()
	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodeLat))

	// assign compact 1-based vertex IDs and emit weighted edges
	compact := make(map[osm.NodeID]graph.NodeID, len(referencedNodes))
	nextID := graph.NodeID(1)
	idOf := func(id osm.NodeID) graph.NodeID {
		if v, ok := compact[id]; ok {
			return v
		}
		v := nextID
		compact[id] = v
		nextID++
		return v
	}
	result := &Result{}
	skipped := 0
	for _, s := range segments {
		fromLat, fromOK := nodeLat[s.from]
		toLat, toOK := nodeLat[s.to]
		if !fromOK || !toOK {
			skipped++
			continue
		}
		dist := geo.Haversine(fromLat, nodeLon[s.from], toLat, nodeLon[s.to])
		weight := graph.Distance(math.Round(dist))
		if weight == 0 {
			weight = 1 // avoid zero-weight edges
		}
		result.Edges = append(result.Edges, graph.Edge{A: idOf(s.from), B: idOf(s.to), D: weight})
	}
	result.NodeCount = int(nextID) - 1
	if skipped > 0 {
		log.Printf("Skipped %d segments with missing node coordinates", skipped)
	}
	log.Printf("Road network: %d nodes, %d edges", result.NodeCount, len(result.Edges))
	return result, nil
}
