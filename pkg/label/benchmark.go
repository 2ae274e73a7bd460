package label

import (
	"math"
	"math/rand"

	"path_oracle/pkg/graph"
)

// RandomPairs generates batches of random query pairs filtered into
// distance buckets: bucket caps grow geometrically from minDist to the
// graph diameter, and generation runs until every bucket holds bucketSize
// pairs. Every fifth candidate comes from a short random walk, which keeps
// the small-distance buckets filling on large graphs.
func RandomPairs(g *graph.Graph, index *ContractionIndex, minDist graph.Distance,
	bucketSize, bucketCount int) [][][2]graph.NodeID {
	buckets := make([][][2]graph.NodeID, bucketCount)
	maxDist := g.Diameter(true)
	x := math.Pow(float64(maxDist)/float64(minDist), 1/float64(bucketCount))
	// the last cap is implied by the diameter
	caps := make([]graph.Distance, 0, bucketCount-1)
	for i := 1; i < bucketCount; i++ {
		caps = append(caps, graph.Distance(float64(minDist)*math.Pow(x, float64(i))))
	}
	todo := bucketCount
	counter := 0
	for todo > 0 {
		counter++
		var a, b graph.NodeID
		if counter%5 == 0 {
			a, b = g.RandomPair(1 + rand.Intn(100))
		} else {
			a, b = g.RandomNode(), g.RandomNode()
		}
		d := index.GetDistance(a, b)
		if d < minDist || d == graph.Infinity {
			continue
		}
		bucket := 0
		for bucket < len(caps) && caps[bucket] <= d {
			bucket++
		}
		if len(buckets[bucket]) < bucketSize {
			buckets[bucket] = append(buckets[bucket], [2]graph.NodeID{a, b})
			if len(buckets[bucket]) == bucketSize {
				todo--
			}
		}
	}
	return buckets
}
