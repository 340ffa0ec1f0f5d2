package fuzzydbscan

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// components is the output of cluster building.
type components struct {
	// clusterOf[p] is the cluster ID of core point p, NoCluster otherwise.
	clusterOf []int
	// reach[b] lists, in ascending order, the clusters with a core point
	// adjacent to non-core point b. Empty for core and noise points.
	reach     [][]int
	summaries []ClusterSummary
}

// buildClusters merges core points joined by positive neighbor weight into
// clusters and records which clusters every non-core point can reach.
// Cluster IDs are dense and numbered in order of each cluster's lowest
// point index.
func buildClusters(nbs []neighborhood, memberships []float64) components {
	n := len(nbs)
	uf := NewUnionFind(n)
	for p := 0; p < n; p++ {
		if memberships[p] <= 0 {
			continue
		}
		for _, q := range nbs[p].idx {
			if q > p && memberships[q] > 0 {
				uf.Union(p, q)
			}
		}
	}

	comps := components{
		clusterOf: make([]int, n),
		reach:     make([][]int, n),
	}

	idOfRoot := make([]int, n)
	for i := range idOfRoot {
		idOfRoot[i] = NoCluster
	}
	for p := 0; p < n; p++ {
		if memberships[p] <= 0 {
			comps.clusterOf[p] = NoCluster
			continue
		}
		root := uf.Find(p)
		id := idOfRoot[root]
		if id == NoCluster {
			id = len(comps.summaries)
			idOfRoot[root] = id
			comps.summaries = append(comps.summaries, ClusterSummary{
				ID:     id,
				Core:   roaring.New(),
				Border: roaring.New(),
			})
		}
		comps.clusterOf[p] = id
		comps.summaries[id].Core.Add(uint32(p))
	}

	for b := 0; b < n; b++ {
		if comps.clusterOf[b] != NoCluster {
			continue
		}
		var reach []int
		for _, q := range nbs[b].idx {
			if c := comps.clusterOf[q]; c != NoCluster {
				reach = append(reach, c)
			}
		}
		if len(reach) == 0 {
			continue
		}
		slices.Sort(reach)
		reach = slices.Compact(reach)
		for _, c := range reach {
			comps.summaries[c].Border.Add(uint32(b))
		}
		comps.reach[b] = reach
	}

	return comps
}
